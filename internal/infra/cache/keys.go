package cache

import (
	"fmt"
	"time"
)

// Resource keys. Every cached upstream collection is addressed by one of
// these; mutations delete the key they touch.
const (
	KeyMachines         = "machines"
	KeyOrders           = "orders"
	KeySteps            = "steps"
	KeyDowntimes        = "downtimes"
	KeyJobLogs          = "job_logs"
	KeySchedule         = "schedule"
	KeyUsers            = "users"
	KeyAnalyticsSummary = "analytics_summary"
	KeyDashboardSummary = "dashboard_summary"
	KeyGanttFigure      = "gantt_figure"
)

// Stale-times. Live views turn over faster than reference data.
const (
	DefaultStaleTime = 5 * time.Minute
	LiveStaleTime    = 60 * time.Second
	QueueStaleTime   = 15 * time.Second
)

// KeyOrdersFiltered addresses an order list narrowed by a filter
// expression; distinct filters cache independently.
func KeyOrdersFiltered(filter string) string {
	if filter == "" {
		return KeyOrders
	}
	return fmt.Sprintf("%s?%s", KeyOrders, filter)
}

// KeyOperatorQueue addresses one machine's operator queue snapshot.
func KeyOperatorQueue(machineIDCode string) string {
	return fmt.Sprintf("operator_queue:%s", machineIDCode)
}

// KeyDashboardSummaryFor addresses the dashboard summary computed for
// one viewer timezone; completed-today depends on the viewer's calendar.
func KeyDashboardSummaryFor(timezone string) string {
	return fmt.Sprintf("%s:%s", KeyDashboardSummary, timezone)
}
