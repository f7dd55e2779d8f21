// Package metrics defines and registers the custom Prometheus metrics of the
// portal. It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gatekeeper metrics ───────────────────────────────────────────────────────

// GatekeeperDecisionsTotal counts page requests by gatekeeper outcome.
// Label:
//   - outcome: "pass", "redirect_locale", "redirect_sign_in", "redirect_dashboard"
var GatekeeperDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gatekeeper_decisions_total",
		Help:      "Total number of gatekeeper decisions, by outcome.",
	},
	[]string{"outcome"},
)

// GatekeeperDuration measures a full decision including identity resolution.
var GatekeeperDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gatekeeper_decision_duration_seconds",
		Help:      "Duration of a gatekeeper decision, identity resolution included.",
		Buckets:   prometheus.DefBuckets,
	},
)

// IdentityResolutionsTotal counts identity resolutions.
// Label:
//   - result: "user", "anonymous" or "error" (treated as anonymous)
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of session resolutions, by result.",
	},
	[]string{"result"},
)

// ── Account metrics ──────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// SignUpsTotal counts created accounts by role.
var SignUpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ups_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// ── Marketplace metrics ──────────────────────────────────────────────────────

// PropertiesListedTotal counts newly listed properties by city.
var PropertiesListedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "properties_listed_total",
		Help:      "Total number of properties listed, by city.",
	},
	[]string{"city"},
)

// DocumentsUploadedBytes observes uploaded document sizes.
var DocumentsUploadedBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "document_upload_bytes",
		Help:      "Size of uploaded documents in bytes.",
		Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8), // 1KiB … 16MiB
	},
)

// ── Background work ──────────────────────────────────────────────────────────

// ActivityDroppedTotal counts activity entries dropped on a full queue.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity entries dropped because the queue was full.",
	},
)

// ChatProxyResponsesTotal counts onboarding chat upstream responses by
// status code class ("2xx", "4xx", "5xx", "error").
var ChatProxyResponsesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_proxy_responses_total",
		Help:      "Total number of proxied chat completions, by upstream status class.",
	},
	[]string{"class"},
)
