package async_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopfloor-console/internal/infra/async"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrokerPublishSubscribe(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	subscription, err := broker.Subscribe(async.TopicOperatorQueue)
	require.NoError(t, err)

	err = broker.Publish(context.Background(), async.TopicOperatorQueue, async.BrokerMessage{
		Event: "queue_updated",
		Value: "VMC-001",
	})
	require.NoError(t, err)

	select {
	case msg := <-subscription.Receiver:
		assert.Equal(t, "queue_updated", msg.Event)
		assert.Equal(t, "VMC-001", msg.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broker message")
	}
}

func TestLocalBrokerPublishUnknownTopic(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	err := broker.Publish(context.Background(), "nope", async.BrokerMessage{Event: "x"})
	assert.ErrorIs(t, err, async.ErrTopicNotFound)
}

func TestLocalBrokerUnsubscribeStopsDelivery(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	subscription, err := broker.Subscribe(async.TopicOperatorQueue)
	require.NoError(t, err)

	err = broker.Unsubscribe(async.TopicOperatorQueue, subscription)
	require.NoError(t, err)

	// Receiver is closed; a late publish must not deliver anything.
	err = broker.Publish(context.Background(), async.TopicOperatorQueue, async.BrokerMessage{Event: "late"})
	require.NoError(t, err)

	msg, open := <-subscription.Receiver
	assert.False(t, open)
	assert.Empty(t, msg.Event)
}

// Unsubscribing while publishes are in flight must neither race on the
// subscription state nor deliver into the closed receiver.
func TestLocalBrokerUnsubscribeDuringPublishBurst(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	subscription, err := broker.Subscribe(async.TopicOperatorQueue)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			broker.Publish(context.Background(), async.TopicOperatorQueue, async.BrokerMessage{
				Event: "queue_updated",
				Value: "VMC-001",
			})
		}
	}()

	// Drain a few snapshots, then drop the subscription mid-burst.
	for i := 0; i < 3; i++ {
		select {
		case <-subscription.Receiver:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broker message")
		}
	}
	require.NoError(t, broker.Unsubscribe(async.TopicOperatorQueue, subscription))

	wg.Wait()

	// The receiver is closed; draining it must terminate.
	for range subscription.Receiver {
	}
}

func TestLocalBrokerUnsubscribeUnknownSubscription(t *testing.T) {
	broker := async.NewLocalBroker()
	defer broker.Stop()

	_, err := broker.Subscribe(async.TopicOperatorQueue)
	require.NoError(t, err)

	err = broker.Unsubscribe(async.TopicOperatorQueue, async.Subscription{ID: "missing"})
	assert.ErrorIs(t, err, async.ErrSubscriptorNotFound)
}
