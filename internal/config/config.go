package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Checks    ChecksConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
	MigrationsPath string
}

type StorageConfig struct {
	// Driver selects the store backing the dashboard: "memory" serves
	// the seeded demo dataset, "postgres" a real database.
	Driver string
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
}

type ChecksConfig struct {
	// SlowThresholdMs is the response time above which a successful
	// check raises a SLOW alert.
	SlowThresholdMs int
	// SSLExpiryDays is the certificate-expiry horizon for SSL alerts.
	SSLExpiryDays int
	// HistoryWindow is how many recent checks feed the uptime rollup.
	HistoryWindow int
	// DefaultIntervalMin is the check interval assigned to new sites
	// when the request does not specify one.
	DefaultIntervalMin int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("UPTIME")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.migrationspath", "migrations")
	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("auth.tokenttl", "15m")
	viper.SetDefault("auth.refreshtokenttl", "168h")
	viper.SetDefault("checks.slowthresholdms", 3000)
	viper.SetDefault("checks.sslexpirydays", 7)
	viper.SetDefault("checks.historywindow", 100)
	viper.SetDefault("checks.defaultintervalmin", 5)
	viper.SetDefault("ratelimit.requestspersecond", 50)
	viper.SetDefault("ratelimit.burst", 100)

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
		cfg.Storage.Driver = "postgres"
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-only-secret"
	}

	return &cfg, nil
}
