// Package metrics defines and registers all custom Prometheus metrics for the
// route tracking service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "route_tracking"

// ── Provider metrics ──────────────────────────────────────────────────────────

// ProviderRequestsTotal counts outbound geocoding and routing calls.
// Labels:
//   - provider: "nominatim" or "osrm"
//   - outcome: "ok", "not_found", "no_route", "unavailable"
var ProviderRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Total number of requests sent to external geocoding and routing providers.",
	},
	[]string{"provider", "outcome"},
)

// ProviderRequestDuration measures provider round trips.
// Label:
//   - provider: "nominatim" or "osrm"
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of external provider requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// GeocodeCacheTotal counts geocode cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var GeocodeCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_cache_total",
		Help:      "Total number of geocode cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Itinerary metrics ─────────────────────────────────────────────────────────

// ItineraryBuildsTotal counts itinerary builds.
// Label:
//   - result: "ok", "stop_unresolved", "no_route", "unavailable", "error"
var ItineraryBuildsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "itinerary_builds_total",
		Help:      "Total number of itinerary builds, labelled by result.",
	},
	[]string{"result"},
)

// ItineraryBuildDuration measures a full geocode + route build.
var ItineraryBuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "itinerary_build_duration_seconds",
		Help:      "Duration of itinerary builds including provider calls.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
	},
)

// ── Package metrics ───────────────────────────────────────────────────────────

// PackageTransitionsTotal counts applied status transitions.
// Labels:
//   - from: previous status
//   - to: new status
var PackageTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "package_transitions_total",
		Help:      "Total number of package status transitions persisted.",
	},
	[]string{"from", "to"},
)

// PackageTransitionErrorsTotal counts rejected or failed transitions.
// Label:
//   - reason: "illegal_transition", "not_found", "busy", "conflict", "persist_failed"
var PackageTransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "package_transition_errors_total",
		Help:      "Total number of package transitions that were rejected or failed.",
	},
	[]string{"reason"},
)

// ── Route metrics ─────────────────────────────────────────────────────────────

// RouteStopsProcessedTotal counts stops processed by route progress.
// Label:
//   - outcome: "delivered" or "failed"
var RouteStopsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_stops_processed_total",
		Help:      "Total number of route stops processed, by outcome.",
	},
	[]string{"outcome"},
)

// RoutesCompletedTotal counts routes that reached their last stop.
var RoutesCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "routes_completed_total",
		Help:      "Total number of routes completed.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification delivery attempts.
// Label:
//   - result: "sent", "duplicate", "failed", "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification intents handled, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending intents in each worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notification intents pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
