// Package metrics defines and registers all custom Prometheus metrics for the
// taskboard API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at package init; the
// /metrics endpoint exposes them together with the HTTP request metrics from
// the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskboard"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts created user accounts.
// Label:
//   - role: the role the account was registered with
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by role.",
	},
	[]string{"role"},
)

// ── Projection metrics ────────────────────────────────────────────────────────

// ProjectionCacheTotal counts assigned-users projection cache lookups.
// Label:
//   - result: "hit" (served from cache) or "miss" (recomputed)
var ProjectionCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projection_cache_total",
		Help:      "Total number of projection cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ProjectionQueueDepth tracks the number of refresh jobs waiting in each
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ProjectionQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "projection_queue_depth",
		Help:      "Current number of refresh jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ProjectionRefreshDuration measures how long one projection refresh takes.
// Label:
//   - result: "ok" or "error"
var ProjectionRefreshDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "projection_refresh_duration_seconds",
		Help:      "Duration of assigned-users projection refreshes from dequeue to cache write.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)
