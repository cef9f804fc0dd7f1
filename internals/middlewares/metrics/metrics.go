package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gerejaku_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gerejaku_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	checkIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gerejaku_checkins_total",
		Help: "Check-in attempts by channel and result (ok, duplicate, rejected, error).",
	}, []string{"method", "result"})

	kioskSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gerejaku_kiosk_sessions_total",
		Help: "Kiosk session lifecycle transitions.",
	}, []string{"action"})
)

// Middleware records count and latency per matched route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func ObserveCheckIn(method, result string) {
	checkIns.WithLabelValues(method, result).Inc()
}

func ObserveKiosk(action string) {
	kioskSessions.WithLabelValues(action).Inc()
}
