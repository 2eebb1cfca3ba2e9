package domain_test

import (
	"testing"

	"shopfloor-console/internal/shopfloor/domain"
	shared "shopfloor-console/internal/shared_kernel/domain"

	"github.com/stretchr/testify/assert"
)

func job(status shared.TaskStatus) *shared.OperatorJob {
	return &shared.OperatorJob{ID: 107, JobCode: "J107", ProductName: "Bracket", Status: status}
}

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name     string
		queue    shared.MachineQueue
		expected domain.QueueState
	}{
		{
			name:     "no current and no next job",
			queue:    shared.MachineQueue{MachineIDCode: "VMC-001"},
			expected: domain.StateNoJob,
		},
		{
			name: "next job ready to start",
			queue: shared.MachineQueue{
				NextTaskInSequence: job(shared.TaskStatusScheduled),
				IsNextTaskReady:    true,
			},
			expected: domain.StateUpNext,
		},
		{
			name: "next job blocked on predecessor",
			queue: shared.MachineQueue{
				NextTaskInSequence: job(shared.TaskStatusScheduled),
				IsNextTaskReady:    false,
				WaitingFor:         &shared.WaitingInfo{StepName: "Deburring", Status: shared.TaskStatusInProgress},
			},
			expected: domain.StateWaiting,
		},
		{
			name:     "running job",
			queue:    shared.MachineQueue{CurrentJob: job(shared.TaskStatusInProgress)},
			expected: domain.StateInProgress,
		},
		{
			name:     "paused job",
			queue:    shared.MachineQueue{CurrentJob: job(shared.TaskStatusPaused)},
			expected: domain.StatePaused,
		},
		{
			name:     "blocked job",
			queue:    shared.MachineQueue{CurrentJob: job(shared.TaskStatusBlocked)},
			expected: domain.StateBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.DeriveState(tt.queue))
		})
	}
}

func TestAllowedActionsPerState(t *testing.T) {
	assert.Empty(t, domain.AllowedActions(domain.StateNoJob))
	assert.Empty(t, domain.AllowedActions(domain.StateWaiting))
	assert.ElementsMatch(t, []domain.Action{domain.ActionStart}, domain.AllowedActions(domain.StateUpNext))
	assert.ElementsMatch(t,
		[]domain.Action{domain.ActionPause, domain.ActionFinish, domain.ActionReportIssue},
		domain.AllowedActions(domain.StateInProgress))
	assert.ElementsMatch(t,
		[]domain.Action{domain.ActionStart, domain.ActionCancel},
		domain.AllowedActions(domain.StatePaused))
	assert.ElementsMatch(t,
		[]domain.Action{domain.ActionStart, domain.ActionCancel},
		domain.AllowedActions(domain.StateBlocked))
}

func TestValidateAction(t *testing.T) {
	assert.NoError(t, domain.ValidateAction(domain.StateUpNext, domain.ActionStart))
	assert.NoError(t, domain.ValidateAction(domain.StateBlocked, domain.ActionCancel))

	err := domain.ValidateAction(domain.StateWaiting, domain.ActionStart)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)

	err = domain.ValidateAction(domain.StateInProgress, domain.ActionStart)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
}

func TestParseAction(t *testing.T) {
	action, err := domain.ParseAction("report-issue")
	assert.NoError(t, err)
	assert.Equal(t, domain.ActionReportIssue, action)

	_, err = domain.ParseAction("restart")
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestValidIssueReason(t *testing.T) {
	assert.NoError(t, domain.ValidIssueReason("Tool Breakage"))
	assert.ErrorIs(t, domain.ValidIssueReason(""), domain.ErrReasonRequired)
	assert.ErrorIs(t, domain.ValidIssueReason("felt like it"), domain.ErrUnknownReason)
}

func TestTargetTask(t *testing.T) {
	next := job(shared.TaskStatusScheduled)
	current := job(shared.TaskStatusInProgress)

	queue := shared.MachineQueue{CurrentJob: current, NextTaskInSequence: next}
	assert.Equal(t, current, domain.TargetTask(queue, domain.StateInProgress))

	upNext := shared.MachineQueue{NextTaskInSequence: next, IsNextTaskReady: true}
	assert.Equal(t, next, domain.TargetTask(upNext, domain.StateUpNext))
}
