package backend

import (
	"context"
	"fmt"
	"net/url"

	"shopfloor-console/internal/shared_kernel/domain"
)

type ReportIssueRequest struct {
	Reason string `json:"reason"`
}

func (c *Client) MachineQueue(ctx context.Context, machineIDCode string) (domain.MachineQueue, error) {
	var queue domain.MachineQueue
	path := fmt.Sprintf("/api/operators/%s/queue", url.PathEscape(machineIDCode))
	if err := c.get(ctx, path, nil, &queue); err != nil {
		return domain.MachineQueue{}, err
	}

	return queue, nil
}

// TaskAction posts one operator action. body is nil except for
// report-issue, which carries the reason.
func (c *Client) TaskAction(ctx context.Context, taskID domain.ID, action string, body any) error {
	path := fmt.Sprintf("/api/scheduled-tasks/%d/%s", taskID, action)
	return c.post(ctx, path, body, nil)
}
