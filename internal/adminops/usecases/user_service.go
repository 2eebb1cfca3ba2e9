package usecases

import (
	"context"
	"strings"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type UserGateway interface {
	ListUsers(ctx context.Context) ([]shared.User, error)
	CreateUser(ctx context.Context, in backend.UserRequest) (shared.User, error)
	GetUser(ctx context.Context, id shared.ID) (shared.User, error)
	PatchUser(ctx context.Context, id shared.ID, in backend.UserRequest) (shared.User, error)
	DeleteUser(ctx context.Context, id shared.ID) error
}

type UserService interface {
	List(ctx context.Context) ([]shared.User, error)
	Create(ctx context.Context, in backend.UserRequest) (shared.User, error)
	Get(ctx context.Context, id shared.ID) (shared.User, error)
	Patch(ctx context.Context, id shared.ID, in backend.UserRequest) (shared.User, error)
	Delete(ctx context.Context, id shared.ID) error
}

func NewUserService(gateway UserGateway, queryCache cache.Cache) *SimpleUserService {
	return &SimpleUserService{gateway: gateway, queryCache: queryCache}
}

var _ UserService = (*SimpleUserService)(nil)

type SimpleUserService struct {
	gateway    UserGateway
	queryCache cache.Cache
}

func (s *SimpleUserService) List(ctx context.Context) ([]shared.User, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyUsers, cache.DefaultStaleTime, func() ([]shared.User, error) {
		return s.gateway.ListUsers(ctx)
	})
}

func (s *SimpleUserService) Create(ctx context.Context, in backend.UserRequest) (shared.User, error) {
	if err := validateUser(in, true); err != nil {
		return shared.User{}, err
	}

	user, err := s.gateway.CreateUser(ctx, in)
	if err != nil {
		return shared.User{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyUsers)
	return user, nil
}

func (s *SimpleUserService) Get(ctx context.Context, id shared.ID) (shared.User, error) {
	return s.gateway.GetUser(ctx, id)
}

func (s *SimpleUserService) Patch(ctx context.Context, id shared.ID, in backend.UserRequest) (shared.User, error) {
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return shared.User{}, validationError("email is malformed")
	}
	if in.Role != "" && !in.Role.Valid() {
		return shared.User{}, validationError("role %q is unknown", in.Role)
	}

	user, err := s.gateway.PatchUser(ctx, id, in)
	if err != nil {
		return shared.User{}, err
	}

	s.queryCache.Delete(ctx, cache.KeyUsers)
	return user, nil
}

func (s *SimpleUserService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.queryCache.Delete(ctx, cache.KeyUsers)
	return nil
}

func validateUser(in backend.UserRequest, requirePassword bool) error {
	if !strings.Contains(in.Email, "@") {
		return validationError("email is malformed")
	}
	if requirePassword && in.Password == "" {
		return validationError("password is required")
	}
	if !in.Role.Valid() {
		return validationError("role %q is unknown", in.Role)
	}

	return nil
}
