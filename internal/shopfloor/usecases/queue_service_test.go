package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopfloor-console/internal/shopfloor/domain"
	"shopfloor-console/internal/shopfloor/usecases"
	shared "shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is a deterministic in-memory cache for tests. TTLs are not
// enforced; staleness behavior is covered by the cache package's own
// tests.
type mapCache struct {
	mu     sync.Mutex
	values map[string]any
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string]any)}
}

func (c *mapCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, found := c.values[key]
	return value, found
}

func (c *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return true
}

func (c *mapCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *mapCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) (any, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	value, err := loader()
	if err != nil {
		return nil, err
	}

	c.Set(ctx, key, value, ttl)
	return value, nil
}

type fakeGateway struct {
	mu         sync.Mutex
	queue      shared.MachineQueue
	queueErr   error
	queueCalls int
	actions    []string
	actionErr  error
	onAction   func(taskID shared.ID, action string)
	blockOn    chan struct{}
	started    chan struct{}
}

func (g *fakeGateway) MachineQueue(_ context.Context, _ string) (shared.MachineQueue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queueCalls++
	return g.queue, g.queueErr
}

func (g *fakeGateway) TaskAction(_ context.Context, taskID shared.ID, action string, _ any) error {
	if g.blockOn != nil {
		if g.started != nil {
			g.started <- struct{}{}
		}
		<-g.blockOn
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.actionErr != nil {
		return g.actionErr
	}

	g.actions = append(g.actions, action)
	if g.onAction != nil {
		g.onAction(taskID, action)
	}

	return nil
}

func upNextQueue() shared.MachineQueue {
	return shared.MachineQueue{
		MachineIDCode: "VMC-001",
		MachineName:   "Haas VF-2",
		NextTaskInSequence: &shared.OperatorJob{
			ID: 107, JobCode: "J107", ProductName: "Bracket", Status: shared.TaskStatusScheduled,
		},
		IsNextTaskReady: true,
	}
}

func TestQueueServiceCachesSnapshots(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{queue: upNextQueue()}
	service := usecases.NewQueueService(gateway, newMapCache())

	first, err := service.Queue(ctx, "VMC-001")
	require.NoError(t, err)
	second, err := service.Queue(ctx, "VMC-001")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gateway.queueCalls)
	assert.Equal(t, domain.StateUpNext, first.State)
	assert.Equal(t, []domain.Action{domain.ActionStart}, first.AllowedActions)
}

func TestQueueServiceRefreshForcesRefetch(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{queue: upNextQueue()}
	service := usecases.NewQueueService(gateway, newMapCache())

	_, err := service.Queue(ctx, "VMC-001")
	require.NoError(t, err)

	// Upstream state changes behind the cache.
	gateway.mu.Lock()
	gateway.queue = shared.MachineQueue{
		MachineIDCode: "VMC-001",
		CurrentJob: &shared.OperatorJob{
			ID: 107, JobCode: "J107", Status: shared.TaskStatusInProgress,
		},
	}
	gateway.mu.Unlock()

	snapshot, err := service.RefreshQueue(ctx, "VMC-001")
	require.NoError(t, err)

	assert.Equal(t, 2, gateway.queueCalls)
	assert.Equal(t, domain.StateInProgress, snapshot.State)
	assert.Equal(t, shared.ID(107), snapshot.Queue.CurrentJob.ID)
}

func TestQueueServicePropagatesFetchError(t *testing.T) {
	gateway := &fakeGateway{queueErr: errors.New("backend unreachable")}
	service := usecases.NewQueueService(gateway, newMapCache())

	_, err := service.Queue(context.Background(), "VMC-001")
	assert.Error(t, err)
}
