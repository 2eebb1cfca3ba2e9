package usecases

import (
	"context"
	"io"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type StepGateway interface {
	ListSteps(ctx context.Context) ([]shared.ProcessStep, error)
	CreateStep(ctx context.Context, in backend.ProcessStepRequest) (shared.ProcessStep, error)
	UpdateStep(ctx context.Context, id shared.ID, in backend.ProcessStepRequest) (shared.ProcessStep, error)
	DeleteStep(ctx context.Context, id shared.ID) error
	ImportSteps(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

type StepService interface {
	List(ctx context.Context) ([]shared.ProcessStep, error)
	Create(ctx context.Context, in backend.ProcessStepRequest) (shared.ProcessStep, error)
	Update(ctx context.Context, id shared.ID, in backend.ProcessStepRequest) (shared.ProcessStep, error)
	Delete(ctx context.Context, id shared.ID) error
	Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

func NewStepService(gateway StepGateway, queryCache cache.Cache) *SimpleStepService {
	return &SimpleStepService{gateway: gateway, queryCache: queryCache}
}

var _ StepService = (*SimpleStepService)(nil)

type SimpleStepService struct {
	gateway    StepGateway
	queryCache cache.Cache
}

func (s *SimpleStepService) List(ctx context.Context) ([]shared.ProcessStep, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeySteps, cache.DefaultStaleTime, func() ([]shared.ProcessStep, error) {
		return s.gateway.ListSteps(ctx)
	})
}

func (s *SimpleStepService) Create(ctx context.Context, in backend.ProcessStepRequest) (shared.ProcessStep, error) {
	if err := validateStep(in); err != nil {
		return shared.ProcessStep{}, err
	}

	step, err := s.gateway.CreateStep(ctx, in)
	if err != nil {
		return shared.ProcessStep{}, err
	}

	s.queryCache.Delete(ctx, cache.KeySteps)
	return step, nil
}

func (s *SimpleStepService) Update(ctx context.Context, id shared.ID, in backend.ProcessStepRequest) (shared.ProcessStep, error) {
	if err := validateStep(in); err != nil {
		return shared.ProcessStep{}, err
	}

	step, err := s.gateway.UpdateStep(ctx, id, in)
	if err != nil {
		return shared.ProcessStep{}, err
	}

	s.queryCache.Delete(ctx, cache.KeySteps)
	return step, nil
}

func (s *SimpleStepService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteStep(ctx, id); err != nil {
		return err
	}

	s.queryCache.Delete(ctx, cache.KeySteps)
	return nil
}

func (s *SimpleStepService) Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error) {
	result, err := s.gateway.ImportSteps(ctx, filename, file)
	if err != nil {
		return backend.ImportResult{}, err
	}

	s.queryCache.Delete(ctx, cache.KeySteps)
	return result, nil
}

func validateStep(in backend.ProcessStepRequest) error {
	if in.ProductRouteID == "" {
		return validationError("product_route_id is required")
	}
	if in.StepNumber <= 0 {
		return validationError("step_number must be positive")
	}
	if in.StepName == "" {
		return validationError("step_name is required")
	}
	if in.RequiredMachineType == "" {
		return validationError("required_machine_type is required")
	}
	if in.BaseDurationPerUnitMins <= 0 {
		return validationError("base_duration_per_unit_mins must be positive")
	}

	return nil
}
