// Package metrics holds Prometheus instruments that are used across the
// directory.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in cmd/web is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OK          = "ok"
	NotFound    = "not_found"
	Invalid     = "invalid"
	Unavailable = "unavailable"
	QueryError  = "query_error"
	Stale       = "stale"
	Discarded   = "discarded"
)

var (
	StoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_store_ops_total",
			Help: "Record store operations by kind, operation, and outcome.",
		}, []string{"kind", "op", "outcome"})

	StoreOpSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_store_op_seconds",
			Help:    "Record store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind", "op"})

	CollectionReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_collection_reloads_total",
			Help: "Collection reloads by kind and outcome.",
		}, []string{"kind", "outcome"})

	SlotSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_slot_saves_total",
			Help: "Form saves by kind, mode (create or edit), and outcome.",
		}, []string{"kind", "mode", "outcome"})

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_change_notifications_total",
			Help: "Change notifications published after mutations.",
		}, []string{"outcome"})

	HTTPRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_http_request_seconds",
			Help:    "API request latency by method, route pattern, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		StoreOpsTotal,
		StoreOpSeconds,
		CollectionReloadsTotal,
		SlotSavesTotal,
		NotificationsTotal,
		HTTPRequestSeconds,
	)
}
