package usecases

import (
	"context"
	"fmt"

	"shopfloor-console/internal/infra/cache"
	"shopfloor-console/internal/shopfloor/domain"
)

func NewQueueService(gateway QueueGateway, queryCache cache.Cache) *SimpleQueueService {
	return &SimpleQueueService{
		gateway:    gateway,
		queryCache: queryCache,
	}
}

var _ QueueService = (*SimpleQueueService)(nil)

type SimpleQueueService struct {
	gateway    QueueGateway
	queryCache cache.Cache
}

// Queue returns the cached snapshot for a machine, fetching upstream when
// the 15s stale-time has lapsed.
func (s *SimpleQueueService) Queue(ctx context.Context, machineIDCode string) (QueueSnapshot, error) {
	key := cache.KeyOperatorQueue(machineIDCode)
	return cache.Fetch(ctx, s.queryCache, key, cache.QueueStaleTime, func() (QueueSnapshot, error) {
		return s.fetch(ctx, machineIDCode)
	})
}

// RefreshQueue drops the cached snapshot and fetches a fresh one. Every
// dispatched action and every poll tick lands here, the displayed state
// only ever changes through this path.
func (s *SimpleQueueService) RefreshQueue(ctx context.Context, machineIDCode string) (QueueSnapshot, error) {
	s.queryCache.Delete(ctx, cache.KeyOperatorQueue(machineIDCode))
	return s.Queue(ctx, machineIDCode)
}

func (s *SimpleQueueService) fetch(ctx context.Context, machineIDCode string) (QueueSnapshot, error) {
	queue, err := s.gateway.MachineQueue(ctx, machineIDCode)
	if err != nil {
		return QueueSnapshot{}, fmt.Errorf("fetching queue for %s: %w", machineIDCode, err)
	}

	state := domain.DeriveState(queue)
	return QueueSnapshot{
		Queue:          queue,
		State:          state,
		AllowedActions: domain.AllowedActions(state),
	}, nil
}
