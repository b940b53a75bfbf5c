package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kairos",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kairos",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	stressCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kairos",
			Subsystem: "stress",
			Name:      "entries_created_total",
			Help:      "Total number of stress entries created.",
		},
	)

	readingsAppended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kairos",
			Subsystem: "stress",
			Name:      "readings_appended_total",
			Help:      "Total number of strength readings appended after creation.",
		},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kairos",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		stressCreated,
		readingsAppended,
		logins,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
// Handler errors are passed on unchanged so outer middleware can log them;
// their status is taken from the error while the response is uncommitted.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(statusOf(c, err))
			httpRequests.WithLabelValues(method, path, status).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func statusOf(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// StressCreated counts a created stress entry.
func StressCreated() {
	stressCreated.Inc()
}

// ReadingAppended counts an appended strength reading.
func ReadingAppended() {
	readingsAppended.Inc()
}

// LoginAttempt counts a login by outcome.
func LoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	logins.WithLabelValues(result).Inc()
}
