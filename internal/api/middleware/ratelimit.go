package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long a client's bucket survives without
	// traffic before it is evicted.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepEvery bounds how often the eviction scan runs.
	limiterSweepEvery = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP and evicts
// buckets idle past limiterIdleTTL, so the map stays bounded by the
// number of recently active clients.
type limiterPool struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

func newLimiterPool(requestsPerSecond float64, burst int) *limiterPool {
	return &limiterPool{
		clients:   make(map[string]*clientLimiter),
		rps:       rate.Limit(requestsPerSecond),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (p *limiterPool) get(ip string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.lastSweep) >= limiterSweepEvery {
		for key, client := range p.clients {
			if now.Sub(client.lastSeen) > limiterIdleTTL {
				delete(p.clients, key)
			}
		}
		p.lastSweep = now
	}

	client, ok := p.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[ip] = client
	}
	client.lastSeen = now
	return client.limiter
}

// RateLimit applies a token-bucket limit per client IP.
func RateLimit(requestsPerSecond float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(requestsPerSecond, burst)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP(), time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
