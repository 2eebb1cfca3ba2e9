package domain

import (
	"errors"
	"fmt"
	"slices"

	shared "shopfloor-console/internal/shared_kernel/domain"
)

// QueueState is the kiosk's per-machine view state, derived from the
// fetched queue on every poll. It is never advanced locally; actions
// only become visible through the next re-fetch.
type QueueState string

const (
	StateNoJob      QueueState = "NO_JOB"
	StateUpNext     QueueState = "UP_NEXT"
	StateWaiting    QueueState = "WAITING"
	StateInProgress QueueState = "IN_PROGRESS"
	StatePaused     QueueState = "PAUSED"
	StateBlocked    QueueState = "BLOCKED"
)

type Action string

const (
	ActionStart       Action = "start"
	ActionPause       Action = "pause"
	ActionFinish      Action = "finish"
	ActionCancel      Action = "cancel"
	ActionReportIssue Action = "report-issue"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionStart, ActionPause, ActionFinish, ActionCancel, ActionReportIssue:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrActionNotAllowed = errors.New("action not allowed in current state")
	ErrReasonRequired   = errors.New("issue reason is required")
	ErrUnknownReason    = errors.New("issue reason not in the allowed list")
)

// IssueReasons is the fixed list the kiosk offers. Free-text reasons are
// rejected before they reach the backend.
var IssueReasons = []string{
	"Tool Breakage",
	"Material Shortage",
	"Quality Issue",
	"Machine Fault",
	"Operator Unavailable",
	"Other",
}

func ValidIssueReason(reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	if !slices.Contains(IssueReasons, reason) {
		return fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}

	return nil
}

// DeriveState classifies a fetched queue snapshot.
func DeriveState(queue shared.MachineQueue) QueueState {
	if queue.CurrentJob != nil {
		switch queue.CurrentJob.Status {
		case shared.TaskStatusPaused:
			return StatePaused
		case shared.TaskStatusBlocked:
			return StateBlocked
		default:
			return StateInProgress
		}
	}

	if queue.NextTaskInSequence == nil {
		return StateNoJob
	}
	if queue.IsNextTaskReady {
		return StateUpNext
	}

	return StateWaiting
}

var allowedActions = map[QueueState][]Action{
	StateNoJob:      nil,
	StateWaiting:    nil,
	StateUpNext:     {ActionStart},
	StateInProgress: {ActionPause, ActionFinish, ActionReportIssue},
	StatePaused:     {ActionStart, ActionCancel},
	StateBlocked:    {ActionStart, ActionCancel},
}

// AllowedActions lists what the kiosk may offer in a given state.
func AllowedActions(state QueueState) []Action {
	return slices.Clone(allowedActions[state])
}

// ValidateAction checks an operator action against the state currently
// displayed. The server remains authoritative; this only stops requests
// that can never succeed.
func ValidateAction(state QueueState, action Action) error {
	if !slices.Contains(allowedActions[state], action) {
		return fmt.Errorf("%w: %s in %s", ErrActionNotAllowed, action, state)
	}

	return nil
}

// TargetTask resolves which task an action in the given state operates
// on: start from UP_NEXT targets the queued job, everything else the
// current one.
func TargetTask(queue shared.MachineQueue, state QueueState) *shared.OperatorJob {
	if state == StateUpNext {
		return queue.NextTaskInSequence
	}

	return queue.CurrentJob
}
