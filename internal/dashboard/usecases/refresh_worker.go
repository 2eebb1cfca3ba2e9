package usecases

import (
	"context"
	"log/slog"

	admin "shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/infra/async"

	"github.com/robfig/cron/v3"
)

func NewRefreshWorker(
	dashboardSchedule string,
	analyticsSchedule string,
	defaultTimezone string,
	summaries SummaryService,
	analytics AnalyticsService,
	schedule admin.ScheduleService,
) *RefreshWorker {
	return &RefreshWorker{
		dashboardSchedule: dashboardSchedule,
		analyticsSchedule: analyticsSchedule,
		defaultTimezone:   defaultTimezone,
		summaries:         summaries,
		analytics:         analytics,
		schedule:          schedule,
		cron:              cron.New(),
	}
}

var _ async.Worker = (*RefreshWorker)(nil)

// RefreshWorker re-warms the live dashboard keys on cron schedules so
// the first viewer after a quiet stretch never pays the upstream
// round-trip.
type RefreshWorker struct {
	dashboardSchedule string
	analyticsSchedule string
	defaultTimezone   string
	summaries         SummaryService
	analytics         AnalyticsService
	schedule          admin.ScheduleService
	cron              *cron.Cron
}

func (w *RefreshWorker) Run(ctx context.Context, done func()) {
	defer done()

	if _, err := w.cron.AddFunc(w.dashboardSchedule, func() { w.refreshDashboard(ctx) }); err != nil {
		slog.Error("registering dashboard refresh schedule",
			slog.String("schedule", w.dashboardSchedule),
			slog.Any("error", err))
		return
	}
	if _, err := w.cron.AddFunc(w.analyticsSchedule, func() { w.refreshAnalytics(ctx) }); err != nil {
		slog.Error("registering analytics refresh schedule",
			slog.String("schedule", w.analyticsSchedule),
			slog.Any("error", err))
		return
	}

	slog.Debug("refresh worker started",
		slog.String("dashboard_schedule", w.dashboardSchedule),
		slog.String("analytics_schedule", w.analyticsSchedule))
	w.cron.Start()

	<-ctx.Done()
	slog.Info("refresh worker cancelled")
	<-w.cron.Stop().Done()
}

func (w *RefreshWorker) refreshDashboard(ctx context.Context) {
	if _, err := w.schedule.List(ctx); err != nil {
		slog.Warn("re-warming schedule", slog.Any("error", err))
	}
	if _, err := w.summaries.Summary(ctx, w.defaultTimezone); err != nil {
		slog.Warn("re-warming dashboard summary", slog.Any("error", err))
	}
}

func (w *RefreshWorker) refreshAnalytics(ctx context.Context) {
	if _, err := w.analytics.Summary(ctx); err != nil {
		slog.Warn("re-warming analytics summary", slog.Any("error", err))
	}
}

func (w *RefreshWorker) Shutdown() {
	w.cron.Stop()
}
