package usecases

import (
	"context"
	"io"
	"net/url"
	"sync"

	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/cache"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

type OrderGateway interface {
	ListOrders(ctx context.Context, filter url.Values) ([]shared.ProductionOrder, error)
	CreateOrder(ctx context.Context, in backend.OrderRequest) (shared.ProductionOrder, error)
	UpdateOrder(ctx context.Context, id shared.ID, in backend.OrderRequest) (shared.ProductionOrder, error)
	DeleteOrder(ctx context.Context, id shared.ID) error
	ImportOrders(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

type OrderService interface {
	List(ctx context.Context, filter url.Values) ([]shared.ProductionOrder, error)
	Create(ctx context.Context, in backend.OrderRequest) (shared.ProductionOrder, error)
	Update(ctx context.Context, id shared.ID, in backend.OrderRequest) (shared.ProductionOrder, error)
	Delete(ctx context.Context, id shared.ID) error
	Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error)
}

func NewOrderService(gateway OrderGateway, queryCache cache.Cache) *SimpleOrderService {
	return &SimpleOrderService{gateway: gateway, queryCache: queryCache}
}

var _ OrderService = (*SimpleOrderService)(nil)

// SimpleOrderService caches each distinct filter expression under its own
// key and remembers which keys it has populated so one mutation can sweep
// them all.
type SimpleOrderService struct {
	gateway    OrderGateway
	queryCache cache.Cache
	seenKeys   sync.Map
}

func (s *SimpleOrderService) List(ctx context.Context, filter url.Values) ([]shared.ProductionOrder, error) {
	key := cache.KeyOrdersFiltered(filter.Encode())
	s.seenKeys.Store(key, struct{}{})

	return cache.Fetch(ctx, s.queryCache, key, cache.DefaultStaleTime, func() ([]shared.ProductionOrder, error) {
		return s.gateway.ListOrders(ctx, filter)
	})
}

func (s *SimpleOrderService) Create(ctx context.Context, in backend.OrderRequest) (shared.ProductionOrder, error) {
	if err := validateOrder(in); err != nil {
		return shared.ProductionOrder{}, err
	}

	order, err := s.gateway.CreateOrder(ctx, in)
	if err != nil {
		return shared.ProductionOrder{}, err
	}

	s.invalidate(ctx)
	return order, nil
}

func (s *SimpleOrderService) Update(ctx context.Context, id shared.ID, in backend.OrderRequest) (shared.ProductionOrder, error) {
	if err := validateOrder(in); err != nil {
		return shared.ProductionOrder{}, err
	}

	order, err := s.gateway.UpdateOrder(ctx, id, in)
	if err != nil {
		return shared.ProductionOrder{}, err
	}

	s.invalidate(ctx)
	return order, nil
}

func (s *SimpleOrderService) Delete(ctx context.Context, id shared.ID) error {
	if err := s.gateway.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *SimpleOrderService) Import(ctx context.Context, filename string, file io.Reader) (backend.ImportResult, error) {
	result, err := s.gateway.ImportOrders(ctx, filename, file)
	if err != nil {
		return backend.ImportResult{}, err
	}

	s.invalidate(ctx)
	return result, nil
}

func (s *SimpleOrderService) invalidate(ctx context.Context) {
	s.seenKeys.Range(func(key, _ any) bool {
		s.queryCache.Delete(ctx, key.(string))
		return true
	})
}

func validateOrder(in backend.OrderRequest) error {
	if in.OrderIDCode == "" {
		return validationError("order_id_code is required")
	}
	if in.ProductName == "" {
		return validationError("product_name is required")
	}
	if in.ProductRouteID == "" {
		return validationError("product_route_id is required")
	}
	if in.QuantityToProduce <= 0 {
		return validationError("quantity_to_produce must be positive")
	}
	if in.Priority < 0 {
		return validationError("priority must not be negative")
	}
	if in.DueDate != nil && in.DueDate.Time.Before(in.ArrivalTime.Time) {
		return validationError("due_date must not precede arrival_time")
	}

	return nil
}
