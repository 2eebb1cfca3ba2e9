package usecases

import (
	"context"
	"io"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type DowntimeGateway interface {
	ListDowntimes(ctx context.Context) ([]shared.DowntimeEvent, error)
	CreateDowntime(ctx context.Context, in backend.DowntimeRequest) (shared.DowntimeEvent, error)
	UpdateDowntime(ctx context.Context, id shared.ID, in backend.DowntimeRequest) (shared.DowntimeEvent, error)
	DeleteDowntime(ctx context.Context, id shared.ID) error
	ImportDowntimes(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

type DowntimeService interface {
	List(ctx context.Context) ([]shared.DowntimeEvent, error)
	Create(ctx context.Context, in backend.DowntimeRequest) (shared.DowntimeEvent, error)
	Update(ctx context.Context, id shared.ID, in backend.DowntimeRequest) (shared.DowntimeEvent, error)
	Delete(ctx context.Context, id shared.ID) error
	Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

func NewDowntimeService(gateway DowntimeGateway, queryCache cache.Cache) *SimpleDowntimeService {
	return &SimpleDowntimeService{gateway: gateway, queryCache: queryCache}
}

var _ DowntimeService = (*SimpleDowntimeService)(nil)

type SimpleDowntimeService struct {
	gateway    DowntimeGateway
	queryCache cache.Cache
}

func (s *SimpleDowntimeService) List(ctx context.Context) ([]shared.DowntimeEvent, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyDowntimes, cache.DefaultStaleTime, func() ([]shared.DowntimeEvent, error) {
		return s.gateway.ListDowntimes(ctx)
	})
}

func (s *SimpleDowntimeService) Create(ctx context.Context, in backend.DowntimeRequest) (shared.DowntimeEvent, error) {
	if err := validateDowntime(in); err != nil {
		return shared.DowntimeEvent{}, err
	}

	event, err := s.gateway.CreateDowntime(ctx, in)
	if err != nil {
		return shared.DowntimeEvent{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyDowntimes)
	return event, nil
}

func (s *SimpleDowntimeService) Update(ctx context.Context, id shared.ID, in backend.DowntimeRequest) (shared.DowntimeEvent, error) {
	if err := validateDowntime(in); err != nil {
		return shared.DowntimeEvent{}, err
	}

	event, err := s.gateway.UpdateDowntime(ctx, id, in)
	if err != nil {
		return shared.DowntimeEvent{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyDowntimes)
	return event, nil
}

func (s *SimpleDowntimeService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteDowntime(ctx, id); err != nil {
		return err
	}

	s.queryCache.Delete(ctx, cache.KeyDowntimes)
	return nil
}

func (s *SimpleDowntimeService) Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error) {
	result, err := s.gateway.ImportDowntimes(ctx, filename, file)
	if err != nil {
		return backend.ImportResult{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyDowntimes)
	return result, nil
}

func validateDowntime(in backend.DowntimeRequest) error {
	if in.MachineID <= 0 {
		return validationError("machine_id is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return validationError("start_time and end_time are required")
	}
	if !in.EndTime.After(in.StartTime.Time) {
		return validationError("end_time must follow start_time")
	}
	if in.Reason == "" {
		return validationError("reason is required")
	}

	return nil
}
