package usecases

import (
	"context"
	"encoding/json"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type ScheduleGateway interface {
	ListSchedule(ctx context.Context) ([]shared.ScheduledTask, error)
	UpdateScheduledTask(ctx context.Context, id shared.ID, in backend.TaskUpdateRequest) (shared.ScheduledTask, error)
	DeleteScheduledTask(ctx context.Context, id shared.ID) error
	GenerateSchedule(ctx context.Context, in backend.GenerateScheduleRequest) (backend.ScheduleRunResult, error)
	GanttFigure(ctx context.Context) (json.RawMessage, error)
}

type ScheduleService interface {
	List(ctx context.Context) ([]shared.ScheduledTask, error)
	Update(ctx context.Context, id shared.ID, in backend.TaskUpdateRequest) (shared.ScheduledTask, error)
	Delete(ctx context.Context, id shared.ID) error
	Generate(ctx context.Context, in backend.GenerateScheduleRequest) (backend.ScheduleRunResult, error)
	Gantt(ctx context.Context) (json.RawMessage, error)
}

func NewScheduleService(gateway ScheduleGateway, queryCache cache.Cache) *SimpleScheduleService {
	return &SimpleScheduleService{gateway: gateway, queryCache: queryCache}
}

var _ ScheduleService = (*SimpleScheduleService)(nil)

type SimpleScheduleService struct {
	gateway    ScheduleGateway
	queryCache cache.Cache
}

// List keeps the schedule fresh on the live stale-time: the board behind
// the supervisor's desk re-renders within a minute of a re-plan.
func (s *SimpleScheduleService) List(ctx context.Context) ([]shared.ScheduledTask, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeySchedule, cache.LiveStaleTime, func() ([]shared.ScheduledTask, error) {
		return s.gateway.ListSchedule(ctx)
	})
}

func (s *SimpleScheduleService) Update(ctx context.Context, id shared.ID, in backend.TaskUpdateRequest) (shared.ScheduledTask, error) {
	if in.StartTime != nil && in.EndTime != nil && !in.EndTime.After(in.StartTime.Time) {
		return shared.ScheduledTask{}, validationError("end_time must follow start_time")
	}

	task, err := s.gateway.UpdateScheduledTask(ctx, id, in)
	if err != nil {
		return shared.ScheduledTask{}, err
	}

	s.invalidate(ctx)
	return task, nil
}

func (s *SimpleScheduleService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteScheduledTask(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *SimpleScheduleService) Generate(ctx context.Context, in backend.GenerateScheduleRequest) (backend.ScheduleRunResult, error) {
	result, err := s.gateway.GenerateSchedule(ctx, in)
	if err != nil {
		return backend.ScheduleRunResult{}, err
	}

	s.invalidate(ctx)
	return result, nil
}

func (s *SimpleScheduleService) Gantt(ctx context.Context) (json.RawMessage, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyGanttFigure, cache.LiveStaleTime, func() (json.RawMessage, error) {
		return s.gateway.GanttFigure(ctx)
	})
}

// invalidate sweeps everything a re-plan can change.
func (s *SimpleScheduleService) invalidate(ctx context.Context) {
	s.queryCache.Delete(ctx, cache.KeySchedule)
	s.queryCache.Delete(ctx, cache.KeyGanttFigure)
}
