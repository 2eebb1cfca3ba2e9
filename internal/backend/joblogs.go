package backend

import (
	"context"
	"fmt"

	"shopfloor-console/internal/infra/utils"
	"shopfloor-console/internal/shared_kernel/domain"
)

type JobLogRequest struct {
	ProductionOrderID domain.ID           `json:"production_order_id"`
	ProcessStepID     domain.ID           `json:"process_step_id"`
	MachineID         domain.ID           `json:"machine_id"`
	ActualStartTime   utils.Time          `json:"actual_start_time"`
	ActualEndTime     *utils.Time         `json:"actual_end_time,omitempty"`
	Status            domain.JobLogStatus `json:"status"`
	Remarks           string              `json:"remarks,omitempty"`
}

func (c *Client) ListJobLogs(ctx context.Context) ([]domain.JobLog, error) {
	var logs []domain.JobLog
	if err := c.get(ctx, "/api/job_logs/", nil, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (c *Client) CreateJobLog(ctx context.Context, in JobLogRequest) (domain.JobLog, error) {
	var log domain.JobLog
	if err := c.post(ctx, "/api/job_logs/", in, &log); err != nil {
		return domain.JobLog{}, err
	}

	return log, nil
}

func (c *Client) UpdateJobLog(ctx context.Context, id domain.ID, in JobLogRequest) (domain.JobLog, error) {
	var log domain.JobLog
	if err := c.put(ctx, fmt.Sprintf("/api/job_logs/%d", id), in, &log); err != nil {
		return domain.JobLog{}, err
	}

	return log, nil
}

func (c *Client) DeleteJobLog(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/job_logs/%d", id))
}
