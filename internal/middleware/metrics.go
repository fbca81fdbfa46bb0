package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuthDecisions counts access gate outcomes by route class and result.
var AuthDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "memberbase_auth_decisions_total",
	Help: "Access gate outcomes partitioned by required role and decision.",
}, []string{"required_role", "decision"})

// OTPIssued counts issued one-time codes by channel and outcome.
var OTPIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "memberbase_otp_issued_total",
	Help: "One-time codes issued, partitioned by channel and delivery outcome.",
}, []string{"channel", "outcome"})

// OTPVerified counts verification attempts by outcome.
var OTPVerified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "memberbase_otp_verified_total",
	Help: "One-time code verification attempts partitioned by outcome.",
}, []string{"outcome"})

// RedisErrors counts Redis command failures observed by the cache hook.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "memberbase_redis_errors_total",
	Help: "Redis command errors partitioned by command name.",
}, []string{"command"})

// InitMetrics creates the fiberprometheus middleware for HTTP-level metrics.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
