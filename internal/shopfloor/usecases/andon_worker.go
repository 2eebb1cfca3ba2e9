package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shopfloor-console/internal/infra/async"
	"shopfloor-console/internal/infra/mqtt"
	"shopfloor-console/internal/shopfloor/domain"
)

// AndonSignal is the retained per-machine payload the floor's andon
// boards subscribe to.
type AndonSignal struct {
	Machine string            `json:"machine"`
	State   domain.QueueState `json:"state"`
	JobCode string            `json:"job_code,omitempty"`
	At      time.Time         `json:"at"`
}

func NewAndonWorker(broker async.InternalBroker, publisher mqtt.Publisher) *AndonWorker {
	return &AndonWorker{
		broker:    broker,
		publisher: publisher,
		lastState: make(map[string]domain.QueueState),
	}
}

var _ async.Worker = (*AndonWorker)(nil)

// AndonWorker mirrors derived queue states onto the MQTT andon topics.
// Only state changes are published; snapshot churn within one state
// stays off the wire.
type AndonWorker struct {
	broker    async.InternalBroker
	publisher mqtt.Publisher
	lastState map[string]domain.QueueState
}

func (w *AndonWorker) Run(ctx context.Context, done func()) {
	slog.Debug("andon worker started")
	defer done()

	subscription, err := w.broker.Subscribe(async.TopicOperatorQueue)
	if err != nil {
		slog.Error("subscribing to queue updates", slog.Any("error", err))
		return
	}
	defer w.broker.Unsubscribe(async.TopicOperatorQueue, subscription)

	for {
		select {
		case <-ctx.Done():
			slog.Info("andon worker cancelled")
			return
		case msg, open := <-subscription.Receiver:
			if !open {
				return
			}
			w.handle(msg)
		}
	}
}

func (w *AndonWorker) handle(msg async.BrokerMessage) {
	snapshot, ok := msg.Value.(QueueSnapshot)
	if !ok {
		return
	}

	machine := snapshot.Queue.MachineIDCode
	if w.lastState[machine] == snapshot.State {
		return
	}
	w.lastState[machine] = snapshot.State

	signal := AndonSignal{
		Machine: machine,
		State:   snapshot.State,
		At:      time.Now().UTC(),
	}
	if snapshot.Queue.CurrentJob != nil {
		signal.JobCode = snapshot.Queue.CurrentJob.JobCode
	}

	topic := fmt.Sprintf("andon/%s", machine)
	if err := w.publisher.Publish(topic, signal); err != nil {
		slog.Warn("publishing andon signal",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
}

func (w *AndonWorker) Shutdown() {}
