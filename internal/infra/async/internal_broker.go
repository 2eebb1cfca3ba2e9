package async

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type BrokerTopicName string

// Topics carried by the local broker.
const (
	TopicOperatorQueue BrokerTopicName = "operator_queue"
)

// receiverBuffer bounds how far a slow subscriber can lag before
// deliveries are dropped. Queue snapshots are re-published on every poll
// tick, so a dropped one is superseded within seconds.
const receiverBuffer = 8

type BrokerMessage struct {
	Event string
	Value any
	Span  trace.Span
	Error error
}

type InternalBroker interface {
	Subscribe(topic BrokerTopicName) (Subscription, error)
	Unsubscribe(topic BrokerTopicName, subscription Subscription) error
	Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error
	Stop()
}

type MessageHandler func(msg BrokerMessage)

var _ InternalBroker = (*LocalBroker)(nil)

var ErrTopicNotFound = errors.New("topic not found")
var ErrSubscriptorNotFound = errors.New("subscriptor not found")

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{
		topics: make(map[BrokerTopicName][]*subscriptor),
	}
}

// LocalBroker fans queue snapshots out from the poll worker to the
// websocket and andon subscribers inside one process.
type LocalBroker struct {
	mu     sync.RWMutex
	topics map[BrokerTopicName][]*subscriptor
}

// subscriptor serializes delivery against closing, so an in-flight
// publish can never hit a closed receiver.
type subscriptor struct {
	mu           sync.Mutex
	closed       bool
	subscription Subscription
}

type Subscription struct {
	ID       string
	Receiver chan BrokerMessage
}

func (b *LocalBroker) Subscribe(topic BrokerTopicName) (Subscription, error) {
	subscription := Subscription{
		ID:       uuid.NewString(),
		Receiver: make(chan BrokerMessage, receiverBuffer),
	}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], &subscriptor{subscription: subscription})
	b.mu.Unlock()

	return subscription, nil
}

func (b *LocalBroker) Unsubscribe(topic BrokerTopicName, subscription Subscription) error {
	b.mu.Lock()
	subscriptors, ok := b.topics[topic]
	if !ok {
		b.mu.Unlock()
		return ErrTopicNotFound
	}

	index := slices.IndexFunc(subscriptors, func(s *subscriptor) bool { return s.subscription.ID == subscription.ID })
	if index < 0 {
		b.mu.Unlock()
		return ErrSubscriptorNotFound
	}

	removed := subscriptors[index]
	b.topics[topic] = slices.Delete(subscriptors, index, index+1)
	b.mu.Unlock()

	removed.close()
	return nil
}

func (b *LocalBroker) Publish(ctx context.Context, topic BrokerTopicName, msg BrokerMessage) error {
	msg.Span = trace.SpanFromContext(ctx)

	b.mu.RLock()
	subscriptors, ok := b.topics[topic]
	if !ok {
		b.mu.RUnlock()
		return ErrTopicNotFound
	}
	snapshot := slices.Clone(subscriptors)
	b.mu.RUnlock()

	go func() {
		for _, s := range snapshot {
			s.deliver(msg)
		}
	}()

	return nil
}

func (b *LocalBroker) Stop() {
	b.mu.Lock()
	var closing []*subscriptor
	for topic, subscriptors := range b.topics {
		closing = append(closing, subscriptors...)
		delete(b.topics, topic)
	}
	b.mu.Unlock()

	for _, s := range closing {
		s.close()
	}
}

// deliver drops the message when the receiver's buffer is full rather
// than block the fan-out behind one stalled subscriber.
func (s *subscriptor) deliver(msg BrokerMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.subscription.Receiver <- msg:
	default:
	}
}

func (s *subscriptor) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.subscription.Receiver)
}
