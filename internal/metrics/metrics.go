// Package metrics exposes Prometheus instrumentation for the event pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "events_received_total",
		Help:      "Raw events submitted to a domain processor.",
	}, []string{"domain"})

	EventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "events_rejected_total",
		Help:      "Events dropped before filtering: missing or unknown category/type.",
	}, []string{"domain"})

	EventsFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "events_filtered_total",
		Help:      "Events that failed their category's filter rule.",
	}, []string{"domain", "category"})

	EventsNew = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "events_new_total",
		Help:      "Events that started a fresh merge record.",
	}, []string{"domain", "category"})

	EventsMerged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "events_merged_total",
		Help:      "Events coalesced into an existing merge record.",
	}, []string{"domain", "category"})

	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "notifications_published_total",
		Help:      "Notifications published on a domain bus.",
	}, []string{"domain"})

	NotificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cryptohawk",
		Name:      "notifications_dropped_total",
		Help:      "Notification deliveries dropped for slow subscribers.",
	}, []string{"domain"})
)
