package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopfloor-console/internal/infra/async"
	"shopfloor-console/internal/shopfloor/domain"
	"shopfloor-console/internal/shopfloor/usecases"
	shared "shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	topic   string
	payload any
}

func (p *fakePublisher) Publish(topic string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{topic: topic, payload: msg})
	return nil
}

func (p *fakePublisher) Disconnect() {}

func (p *fakePublisher) snapshot() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.messages...)
}

func TestAndonWorkerPublishesOnStateChange(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	publisher := &fakePublisher{}
	worker := usecases.NewAndonWorker(broker, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go worker.Run(ctx, wg.Done)

	// Give the worker a moment to subscribe.
	require.Eventually(t, func() bool {
		err := broker.Publish(ctx, async.TopicOperatorQueue, async.BrokerMessage{
			Event: "queue_updated",
			Value: usecases.QueueSnapshot{
				Queue: shared.MachineQueue{
					MachineIDCode: "VMC-001",
					CurrentJob:    &shared.OperatorJob{ID: 107, JobCode: "J107", Status: shared.TaskStatusInProgress},
				},
				State: domain.StateInProgress,
			},
		})
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	message := publisher.snapshot()[0]
	assert.Equal(t, "andon/VMC-001", message.topic)
	signal := message.payload.(usecases.AndonSignal)
	assert.Equal(t, domain.StateInProgress, signal.State)
	assert.Equal(t, "J107", signal.JobCode)

	// Same state again stays off the wire.
	require.NoError(t, broker.Publish(ctx, async.TopicOperatorQueue, async.BrokerMessage{
		Event: "queue_updated",
		Value: usecases.QueueSnapshot{
			Queue: shared.MachineQueue{
				MachineIDCode: "VMC-001",
				CurrentJob:    &shared.OperatorJob{ID: 107, JobCode: "J107", Status: shared.TaskStatusInProgress},
			},
			State: domain.StateInProgress,
		},
	}))

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, publisher.snapshot(), 1)

	cancel()
	wg.Wait()
}
