// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the agenda service.
var (
	// Counters.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_bookings_total",
			Help: "Total booking operations by action and outcome",
		},
		[]string{"action", "result"},
	)

	SlotConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_slot_conflicts_total",
			Help: "Total bookings rejected because the slot was already taken",
		},
	)

	BlockagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_blockages_total",
			Help: "Total day block/unblock operations",
		},
		[]string{"action"},
	)

	VacationRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_vacation_rejections_total",
			Help: "Total vacation proposals rejected by rule",
		},
		[]string{"rule"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_notifications_total",
			Help: "Total notifications dispatched by outcome",
		},
		[]string{"result"},
	)

	// Gauges.
	RemindersLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_reminders_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last reminder digest run",
		},
	)
)
