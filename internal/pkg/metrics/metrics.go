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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	surveysInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveys_inserted_total",
			Help: "Total number of survey records inserted",
		},
		[]string{"unit", "source"},
	)

	surveysDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "surveys_deleted_total",
			Help: "Total number of survey records deleted",
		},
	)

	usersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of user accounts created",
		},
		[]string{"role"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	authorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"resource_type", "action", "decision"},
	)

	refreshTokensPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_purged_total",
			Help: "Total number of expired or revoked refresh tokens removed",
		},
	)
)

// Handler exposes the Prometheus registry as a Fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Middleware records request count and latency per route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := routePath(c)
		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// routePath uses the matched route template to keep label cardinality bounded.
func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return "unmatched"
}

// --- Business metric helpers ---

// RecordSurveyInserted records a survey insert. source is "api" or "import".
func RecordSurveyInserted(unit, source string) {
	surveysInserted.WithLabelValues(unit, source).Inc()
}

func RecordSurveyDeleted() {
	surveysDeleted.Inc()
}

func RecordUserCreated(role string) {
	usersCreated.WithLabelValues(role).Inc()
}

// RecordLogin records a login attempt outcome.
func RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	loginAttempts.WithLabelValues(result).Inc()
}

// RecordAuthorizationDecision records an authorization decision
func RecordAuthorizationDecision(resourceType, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	authorizationDecisions.WithLabelValues(resourceType, action, decision).Inc()
}

func RecordRefreshTokensPurged(n int64) {
	refreshTokensPurged.Add(float64(n))
}
