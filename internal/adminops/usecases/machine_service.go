package usecases

import (
	"context"
	"io"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type MachineGateway interface {
	ListMachines(ctx context.Context) ([]shared.Machine, error)
	CreateMachine(ctx context.Context, in backend.MachineRequest) (shared.Machine, error)
	UpdateMachine(ctx context.Context, id shared.ID, in backend.MachineRequest) (shared.Machine, error)
	DeleteMachine(ctx context.Context, id shared.ID) error
	ImportMachines(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

type MachineService interface {
	List(ctx context.Context) ([]shared.Machine, error)
	Create(ctx context.Context, in backend.MachineRequest) (shared.Machine, error)
	Update(ctx context.Context, id shared.ID, in backend.MachineRequest) (shared.Machine, error)
	Delete(ctx context.Context, id shared.ID) error
	Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

func NewMachineService(gateway MachineGateway, queryCache cache.Cache) *SimpleMachineService {
	return &SimpleMachineService{gateway: gateway, queryCache: queryCache}
}

var _ MachineService = (*SimpleMachineService)(nil)

type SimpleMachineService struct {
	gateway    MachineGateway
	queryCache cache.Cache
}

func (s *SimpleMachineService) List(ctx context.Context) ([]shared.Machine, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyMachines, cache.DefaultStaleTime, func() ([]shared.Machine, error) {
		return s.gateway.ListMachines(ctx)
	})
}

func (s *SimpleMachineService) Create(ctx context.Context, in backend.MachineRequest) (shared.Machine, error) {
	if err := validateMachine(in); err != nil {
		return shared.Machine{}, err
	}

	machine, err := s.gateway.CreateMachine(ctx, in)
	if err != nil {
		return shared.Machine{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyMachines)
	return machine, nil
}

func (s *SimpleMachineService) Update(ctx context.Context, id shared.ID, in backend.MachineRequest) (shared.Machine, error) {
	if err := validateMachine(in); err != nil {
		return shared.Machine{}, err
	}

	machine, err := s.gateway.UpdateMachine(ctx, id, in)
	if err != nil {
		return shared.Machine{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyMachines)
	return machine, nil
}

func (s *SimpleMachineService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteMachine(ctx, id); err != nil {
		return err
	}

	s.queryCache.Delete(ctx, cache.KeyMachines)
	return nil
}

func (s *SimpleMachineService) Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error) {
	result, err := s.gateway.ImportMachines(ctx, filename, file)
	if err != nil {
		return backend.ImportResult{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyMachines)
	return result, nil
}

func validateMachine(in backend.MachineRequest) error {
	if in.MachineIDCode == "" {
		return validationError("machine_id_code is required")
	}
	if in.MachineType == "" {
		return validationError("machine_type is required")
	}
	if in.DefaultSetupTimeMins < 0 {
		return validationError("default_setup_time_mins must not be negative")
	}

	return nil
}
