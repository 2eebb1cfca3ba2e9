package usecases

import (
	"context"
	"fmt"
	"time"

	admin "shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

// Summary is the dashboard's headline row.
type Summary struct {
	UtilizationPct float64   `json:"utilization_pct"`
	JobsInProgress int       `json:"jobs_in_progress"`
	CompletedToday int       `json:"completed_today"`
	PendingOrders  int       `json:"pending_orders"`
	AlertCount     int       `json:"alert_count"`
	Timezone       string    `json:"timezone"`
	GeneratedAt    time.Time `json:"generated_at"`
}

type SummaryService interface {
	Summary(ctx context.Context, timezone string) (Summary, error)
}

func NewSummaryService(
	machines admin.MachineService,
	schedule admin.ScheduleService,
	orders admin.OrderService,
	downtimes admin.DowntimeService,
	jobLogs admin.JobLogService,
	queryCache cache.Cache,
) *SimpleSummaryService {
	return &SimpleSummaryService{
		machines:   machines,
		schedule:   schedule,
		orders:     orders,
		downtimes:  downtimes,
		jobLogs:    jobLogs,
		queryCache: queryCache,
		now:        time.Now,
	}
}

var _ SummaryService = (*SimpleSummaryService)(nil)

// SimpleSummaryService computes headline numbers from the already-cached
// collections. The summary itself is cached per viewer timezone on the
// live stale-time, completed-today is a calendar question and two
// viewers in different zones get different answers.
type SimpleSummaryService struct {
	machines   admin.MachineService
	schedule   admin.ScheduleService
	orders     admin.OrderService
	downtimes  admin.DowntimeService
	jobLogs    admin.JobLogService
	queryCache cache.Cache
	now        func() time.Time
}

func (s *SimpleSummaryService) Summary(ctx context.Context, timezone string) (Summary, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Summary{}, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}

	key := cache.KeyDashboardSummaryFor(timezone)
	return cache.Fetch(ctx, s.queryCache, key, cache.LiveStaleTime, func() (Summary, error) {
		return s.compute(ctx, timezone, location, s.now())
	})
}

func (s *SimpleSummaryService) compute(ctx context.Context, timezone string, location *time.Location, now time.Time) (Summary, error) {
	machines, err := s.machines.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	tasks, err := s.schedule.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	orders, err := s.orders.List(ctx, nil)
	if err != nil {
		return Summary{}, err
	}
	downtimes, err := s.downtimes.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	jobLogs, err := s.jobLogs.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Timezone:    timezone,
		GeneratedAt: now.UTC(),
	}

	activeMachines := 0
	for _, machine := range machines {
		if machine.IsActive {
			activeMachines++
		}
	}

	runningMachines := make(map[shared.ID]struct{})
	for _, task := range tasks {
		switch task.Status {
		case shared.TaskStatusInProgress:
			summary.JobsInProgress++
			runningMachines[task.AssignedMachineID] = struct{}{}
		case shared.TaskStatusBlocked:
			summary.AlertCount++
		}
	}
	if activeMachines > 0 {
		summary.UtilizationPct = float64(len(runningMachines)) / float64(activeMachines) * 100
	}

	for _, order := range orders {
		if order.CurrentStatus == shared.OrderStatusPending {
			summary.PendingOrders++
		}
	}

	// Completed-today counts distinct orders whose final log closed on
	// today's calendar date in the viewer's timezone.
	today := now.In(location).Format(time.DateOnly)
	completedOrders := make(map[shared.ID]struct{})
	for _, log := range jobLogs {
		if log.Status != shared.JobLogStatusCompleted || log.ActualEndTime == nil {
			continue
		}
		if log.ActualEndTime.In(location).Format(time.DateOnly) == today {
			completedOrders[log.ProductionOrderID] = struct{}{}
		}
	}
	summary.CompletedToday = len(completedOrders)

	for _, event := range downtimes {
		if !event.StartTime.After(now) && event.EndTime.After(now) {
			summary.AlertCount++
		}
	}

	return summary, nil
}
