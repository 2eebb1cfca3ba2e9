package backend

import (
	"context"
	"fmt"
	"io"

	"shopfloor-console/internal/shared_kernel/domain"
)

// ImportResult is the upstream's reply to a CSV import.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type MachineRequest struct {
	MachineIDCode        string `json:"machine_id_code"`
	MachineType          string `json:"machine_type"`
	DefaultSetupTimeMins int    `json:"default_setup_time_mins"`
	IsActive             *bool  `json:"is_active,omitempty"`
}

func (c *Client) ListMachines(ctx context.Context) ([]domain.Machine, error) {
	var machines []domain.Machine
	if err := c.get(ctx, "/api/machines/", nil, &machines); err != nil {
		return nil, err
	}

	return machines, nil
}

func (c *Client) CreateMachine(ctx context.Context, in MachineRequest) (domain.Machine, error) {
	var machine domain.Machine
	if err := c.post(ctx, "/api/machines/", in, &machine); err != nil {
		return domain.Machine{}, err
	}

	return machine, nil
}

func (c *Client) UpdateMachine(ctx context.Context, id domain.ID, in MachineRequest) (domain.Machine, error) {
	var machine domain.Machine
	if err := c.put(ctx, fmt.Sprintf("/api/machines/%d", id), in, &machine); err != nil {
		return domain.Machine{}, err
	}

	return machine, nil
}

func (c *Client) DeleteMachine(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/machines/%d", id))
}

func (c *Client) ImportMachines(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var result ImportResult
	if err := c.postMultipart(ctx, "/api/machines/import", filename, file, &result); err != nil {
		return ImportResult{}, err
	}

	return result, nil
}
