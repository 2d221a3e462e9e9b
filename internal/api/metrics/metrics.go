// Package metrics defines and registers the custom Prometheus metrics of the
// moviesearch account API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry on import. The
// HTTP request metrics live in a separate registry, and /metrics serves both
// through the Gatherer passed to the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moviesearch"

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signup and login attempts.
// Labels:
//   - operation: "signup" or "login"
//   - result: "success", "invalid", "conflict", "unauthorized" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of signup and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Password reset metrics ────────────────────────────────────────────────────

// ResetRequestsTotal counts password reset requests accepted by the API.
// Label:
//   - result: "queued" or "dropped" (dispatcher queue full or stopped)
var ResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_requests_total",
		Help:      "Total number of password reset requests, labelled by queue outcome.",
	},
	[]string{"result"},
)

// ResetConfirmationsTotal counts reset confirmations.
// Label:
//   - result: "success", "invalid", "expired" or "error"
var ResetConfirmationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_confirmations_total",
		Help:      "Total number of password reset confirmations, by outcome.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionRejectionsTotal counts requests rejected by the session guard.
// Label:
//   - reason: "missing", "malformed", "invalid", "revoked" or "denylist_error"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected by the session guard.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests refused with 429.
// Label:
//   - route: the matched route path (e.g. "/login")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests refused by the rate limiter.",
	},
	[]string{"route"},
)
