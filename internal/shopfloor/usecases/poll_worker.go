package usecases

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"shopfloor-console/internal/infra/async"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const _metricKeyQueuePolls = "queue_polls"

func NewQueuePollWorker(
	ticker *time.Ticker,
	machines []string,
	queues QueueService,
	broker async.InternalBroker,
) *QueuePollWorker {
	return &QueuePollWorker{
		ticker:         ticker,
		machines:       machines,
		queues:         queues,
		broker:         broker,
		lastPublished:  make(map[string]QueueSnapshot),
		metricCounters: make(map[string]metric.Float64Counter),
	}
}

var _ async.Worker = (*QueuePollWorker)(nil)

// QueuePollWorker re-fetches every registered machine's queue on a fixed
// interval. Readiness is recomputed from scratch each tick; this loop is
// the only way a WAITING machine discovers it has become UP_NEXT.
type QueuePollWorker struct {
	ticker         *time.Ticker
	machines       []string
	queues         QueueService
	broker         async.InternalBroker
	lastPublished  map[string]QueueSnapshot
	metricCounters map[string]metric.Float64Counter
}

func (w *QueuePollWorker) Run(ctx context.Context, done func()) {
	slog.Debug("queue poll worker started", slog.Any("machines", w.machines))
	defer done()
	var wg sync.WaitGroup
	w.setupOtelCounters()

	for {
		select {
		case <-ctx.Done():
			slog.Info("queue poll worker cancelled")
			wg.Wait()
			return
		case <-w.ticker.C:
			wg.Add(1)
			w.pollAll(context.Background(), wg.Done)
		}
	}
}

func (w *QueuePollWorker) setupOtelCounters() {
	meter := otel.Meter("shopfloor_console")
	pollCounter, _ := meter.Float64Counter(
		"shopfloor_console.queue_polls",
		metric.WithDescription("operator queue poll attempts"),
	)

	w.metricCounters[_metricKeyQueuePolls] = pollCounter
}

func (w *QueuePollWorker) pollAll(ctx context.Context, done func()) {
	defer done()

	for _, machine := range w.machines {
		snapshot, err := w.queues.RefreshQueue(ctx, machine)
		w.metricCounters[_metricKeyQueuePolls].Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("machine", machine),
				attribute.Bool("success", err == nil),
			))
		if err != nil {
			slog.Warn("polling machine queue",
				slog.String("machine", machine),
				slog.Any("error", err))
			continue
		}

		if reflect.DeepEqual(w.lastPublished[machine], snapshot) {
			continue
		}
		w.lastPublished[machine] = snapshot

		err = w.broker.Publish(ctx, async.TopicOperatorQueue, async.BrokerMessage{
			Event: "queue_updated",
			Value: snapshot,
		})
		// No subscribers yet is fine; the topic appears with the first one.
		if err != nil && !errors.Is(err, async.ErrTopicNotFound) {
			slog.Warn("publishing queue snapshot", slog.Any("error", err))
		}
	}
}

func (w *QueuePollWorker) Shutdown() {
	w.ticker.Stop()
}
