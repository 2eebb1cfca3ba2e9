package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shopfloor-console/internal/shopfloor/domain"
)

type reportIssuePayload struct {
	Reason string `json:"reason"`
}

func NewTaskActionService(gateway QueueGateway, queues QueueService, journal *Journal) *SimpleTaskActionService {
	return &SimpleTaskActionService{
		gateway: gateway,
		queues:  queues,
		journal: journal,
	}
}

var _ TaskActionService = (*SimpleTaskActionService)(nil)

// SimpleTaskActionService posts operator actions upstream. It never
// mutates the displayed state itself: a successful action is followed by
// a forced queue refresh, and the refetched snapshot is the only thing
// the kiosk renders.
type SimpleTaskActionService struct {
	gateway  QueueGateway
	queues   QueueService
	journal  *Journal
	inflight sync.Map
}

func (s *SimpleTaskActionService) Dispatch(ctx context.Context, cmd ActionCommand) (QueueSnapshot, error) {
	guardKey := fmt.Sprintf("%d/%s", cmd.TaskID, cmd.Action)
	if _, loaded := s.inflight.LoadOrStore(guardKey, struct{}{}); loaded {
		return QueueSnapshot{}, ErrActionInFlight
	}
	defer s.inflight.Delete(guardKey)

	snapshot, err := s.queues.Queue(ctx, cmd.MachineIDCode)
	if err != nil {
		return QueueSnapshot{}, err
	}

	if err := domain.ValidateAction(snapshot.State, cmd.Action); err != nil {
		return QueueSnapshot{}, err
	}

	target := domain.TargetTask(snapshot.Queue, snapshot.State)
	if target == nil || target.ID != cmd.TaskID {
		return QueueSnapshot{}, fmt.Errorf("%w: task %d", ErrTaskNotInQueue, cmd.TaskID)
	}

	var body any
	if cmd.Action == domain.ActionReportIssue {
		if err := domain.ValidIssueReason(cmd.Reason); err != nil {
			return QueueSnapshot{}, err
		}
		body = reportIssuePayload{Reason: cmd.Reason}
	}

	if err := s.gateway.TaskAction(ctx, cmd.TaskID, string(cmd.Action), body); err != nil {
		return QueueSnapshot{}, err
	}

	if err := s.journal.Append(ctx, ActionRecord{
		TaskID:        int64(cmd.TaskID),
		MachineIDCode: cmd.MachineIDCode,
		Action:        string(cmd.Action),
		Reason:        cmd.Reason,
		Actor:         cmd.Actor,
	}); err != nil {
		slog.Error("appending to action journal", slog.Any("error", err))
	}

	return s.queues.RefreshQueue(ctx, cmd.MachineIDCode)
}
