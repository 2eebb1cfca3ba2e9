package usecases

import (
	"context"
	"errors"

	"shopfloor-console/internal/shopfloor/domain"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

var (
	ErrActionInFlight = errors.New("action already in flight for this task")
	ErrTaskNotInQueue = errors.New("task is not actionable in the displayed queue")
)

// QueueGateway is the slice of the backend client the operator flow uses.
type QueueGateway interface {
	MachineQueue(ctx context.Context, machineIDCode string) (shared.MachineQueue, error)
	TaskAction(ctx context.Context, taskID shared.ID, action string, body any) error
}

// QueueSnapshot is what the kiosk renders: the fetched queue plus the
// state and actions derived from it.
type QueueSnapshot struct {
	Queue          shared.MachineQueue `json:"queue"`
	State          domain.QueueState   `json:"state"`
	AllowedActions []domain.Action     `json:"allowed_actions"`
}

type QueueService interface {
	Queue(ctx context.Context, machineIDCode string) (QueueSnapshot, error)
	RefreshQueue(ctx context.Context, machineIDCode string) (QueueSnapshot, error)
}

// ActionCommand is one operator button press.
type ActionCommand struct {
	MachineIDCode string
	TaskID        shared.ID
	Action        domain.Action
	Reason        string
	Actor         string
}

type TaskActionService interface {
	Dispatch(ctx context.Context, cmd ActionCommand) (QueueSnapshot, error)
}
