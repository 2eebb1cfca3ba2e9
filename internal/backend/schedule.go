package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"shopfloor-console/internal/infra/utils"
	"shopfloor-console/internal/shared_kernel/domain"
)

type TaskUpdateRequest struct {
	AssignedMachineID domain.ID         `json:"assigned_machine_id,omitempty"`
	StartTime         *utils.Time       `json:"start_time,omitempty"`
	EndTime           *utils.Time       `json:"end_time,omitempty"`
	Status            domain.TaskStatus `json:"status,omitempty"`
}

type GenerateScheduleRequest struct {
	RunID           string      `json:"run_id,omitempty"`
	StartTimeAnchor *utils.Time `json:"start_time_anchor,omitempty"`
}

// ScheduleRunResult reports how a scheduling run went. Status is the
// solver's verdict (OPTIMAL, FEASIBLE, NO_TASKS, INFEASIBLE).
type ScheduleRunResult struct {
	Status         string                 `json:"status"`
	Message        string                 `json:"message"`
	ScheduledTasks []domain.ScheduledTask `json:"scheduled_tasks"`
}

func (c *Client) ListSchedule(ctx context.Context) ([]domain.ScheduledTask, error) {
	var tasks []domain.ScheduledTask
	if err := c.get(ctx, "/api/schedule/", nil, &tasks); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (c *Client) UpdateScheduledTask(ctx context.Context, id domain.ID, in TaskUpdateRequest) (domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	if err := c.put(ctx, fmt.Sprintf("/api/schedule/%d", id), in, &task); err != nil {
		return domain.ScheduledTask{}, err
	}

	return task, nil
}

func (c *Client) DeleteScheduledTask(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/schedule/%d", id))
}

func (c *Client) GenerateSchedule(ctx context.Context, in GenerateScheduleRequest) (ScheduleRunResult, error) {
	var result ScheduleRunResult
	if err := c.post(ctx, "/api/schedule", in, &result); err != nil {
		return ScheduleRunResult{}, err
	}

	return result, nil
}

// GanttFigure returns the server-rendered chart payload untouched.
func (c *Client) GanttFigure(ctx context.Context) (json.RawMessage, error) {
	var figure json.RawMessage
	if err := c.get(ctx, "/api/schedule/gantt", nil, &figure); err != nil {
		return nil, err
	}

	return figure, nil
}
