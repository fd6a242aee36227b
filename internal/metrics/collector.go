package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agencyuptime/dashboard-api/internal/db"
)

// Collector exposes the dashboard's operational metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	checksTotal       *prometheus.CounterVec
	alertsTotal       *prometheus.CounterVec
	alertsResolved    prometheus.Counter

	sitesTotal       prometheus.Gauge
	sitesUp          prometheus.Gauge
	sitesDown        prometheus.Gauge
	fleetAvgUptime   prometheus.Gauge
	fleetAvgResponse prometheus.Gauge
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"method", "path", "status"},
		),

		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_checks_ingested_total",
				Help: "Total number of check results ingested",
			},
			[]string{"status"},
		),

		alertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_alerts_created_total",
				Help: "Total number of alerts created",
			},
			[]string{"type", "severity"},
		),

		alertsResolved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_alerts_resolved_total",
				Help: "Total number of alerts resolved",
			},
		),

		sitesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_sites_total",
			Help: "Number of monitored sites",
		}),

		sitesUp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_sites_up",
			Help: "Number of sites currently up",
		}),

		sitesDown: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_sites_down",
			Help: "Number of sites currently down",
		}),

		fleetAvgUptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_fleet_avg_uptime_percentage",
			Help: "Unweighted mean uptime percentage across all sites",
		}),

		fleetAvgResponse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_fleet_avg_response_time_ms",
			Help: "Unweighted mean response time across all sites",
		}),
	}
}

// Handler serves the registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordHTTPRequest(method, path string, status int) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordCheck(success bool) {
	status := "up"
	if !success {
		status = "down"
	}
	c.checksTotal.WithLabelValues(status).Inc()
}

func (c *Collector) RecordAlertCreated(alert *db.Alert) {
	c.alertsTotal.WithLabelValues(string(alert.Type), string(alert.Severity)).Inc()
}

func (c *Collector) RecordAlertResolved() {
	c.alertsResolved.Inc()
}

func (c *Collector) RecordFleetSummary(total, up, down int, avgUptime float64, avgResponseMs int) {
	c.sitesTotal.Set(float64(total))
	c.sitesUp.Set(float64(up))
	c.sitesDown.Set(float64(down))
	c.fleetAvgUptime.Set(avgUptime)
	c.fleetAvgResponse.Set(float64(avgResponseMs))
}
