package backend

import (
	"context"
	"fmt"
	"io"

	"shopfloor-console/internal/infra/utils"
	"shopfloor-console/internal/shared_kernel/domain"
)

type DowntimeRequest struct {
	MachineID domain.ID  `json:"machine_id"`
	StartTime utils.Time `json:"start_time"`
	EndTime   utils.Time `json:"end_time"`
	Reason    string     `json:"reason"`
}

func (c *Client) ListDowntimes(ctx context.Context) ([]domain.DowntimeEvent, error) {
	var events []domain.DowntimeEvent
	if err := c.get(ctx, "/api/downtimes/", nil, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) CreateDowntime(ctx context.Context, in DowntimeRequest) (domain.DowntimeEvent, error) {
	var event domain.DowntimeEvent
	if err := c.post(ctx, "/api/downtimes/", in, &event); err != nil {
		return domain.DowntimeEvent{}, err
	}

	return event, nil
}

func (c *Client) UpdateDowntime(ctx context.Context, id domain.ID, in DowntimeRequest) (domain.DowntimeEvent, error) {
	var event domain.DowntimeEvent
	if err := c.put(ctx, fmt.Sprintf("/api/downtimes/%d", id), in, &event); err != nil {
		return domain.DowntimeEvent{}, err
	}

	return event, nil
}

func (c *Client) DeleteDowntime(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/downtimes/%d", id))
}

func (c *Client) ImportDowntimes(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var result ImportResult
	if err := c.postMultipart(ctx, "/api/downtimes/import", filename, file, &result); err != nil {
		return ImportResult{}, err
	}

	return result, nil
}
