package usecases

import (
	"context"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type JobLogGateway interface {
	ListJobLogs(ctx context.Context) ([]shared.JobLog, error)
	CreateJobLog(ctx context.Context, in backend.JobLogRequest) (shared.JobLog, error)
	UpdateJobLog(ctx context.Context, id shared.ID, in backend.JobLogRequest) (shared.JobLog, error)
	DeleteJobLog(ctx context.Context, id shared.ID) error
}

type JobLogService interface {
	List(ctx context.Context) ([]shared.JobLog, error)
	Create(ctx context.Context, in backend.JobLogRequest) (shared.JobLog, error)
	Update(ctx context.Context, id shared.ID, in backend.JobLogRequest) (shared.JobLog, error)
	Delete(ctx context.Context, id shared.ID) error
}

func NewJobLogService(gateway JobLogGateway, queryCache cache.Cache) *SimpleJobLogService {
	return &SimpleJobLogService{gateway: gateway, queryCache: queryCache}
}

var _ JobLogService = (*SimpleJobLogService)(nil)

type SimpleJobLogService struct {
	gateway    JobLogGateway
	queryCache cache.Cache
}

func (s *SimpleJobLogService) List(ctx context.Context) ([]shared.JobLog, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyJobLogs, cache.DefaultStaleTime, func() ([]shared.JobLog, error) {
		return s.gateway.ListJobLogs(ctx)
	})
}

func (s *SimpleJobLogService) Create(ctx context.Context, in backend.JobLogRequest) (shared.JobLog, error) {
	if err := validateJobLog(in); err != nil {
		return shared.JobLog{}, err
	}

	log, err := s.gateway.CreateJobLog(ctx, in)
	if err != nil {
		return shared.JobLog{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyJobLogs)
	return log, nil
}

func (s *SimpleJobLogService) Update(ctx context.Context, id shared.ID, in backend.JobLogRequest) (shared.JobLog, error) {
	if err := validateJobLog(in); err != nil {
		return shared.JobLog{}, err
	}

	log, err := s.gateway.UpdateJobLog(ctx, id, in)
	if err != nil {
		return shared.JobLog{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyJobLogs)
	return log, nil
}

func (s *SimpleJobLogService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteJobLog(ctx, id); err != nil {
		return err
	}

	s.queryCache.Delete(ctx, cache.KeyJobLogs)
	return nil
}

func validateJobLog(in backend.JobLogRequest) error {
	if in.ProductionOrderID <= 0 || in.ProcessStepID <= 0 || in.MachineID <= 0 {
		return validationError("production_order_id, process_step_id and machine_id are required")
	}
	if in.ActualStartTime.IsZero() {
		return validationError("actual_start_time is required")
	}
	if in.ActualEndTime != nil && !in.ActualEndTime.After(in.ActualStartTime.Time) {
		return validationError("actual_end_time must follow actual_start_time")
	}

	return nil
}
