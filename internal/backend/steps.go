package backend

import (
	"context"
	"fmt"
	"io"

	"shopfloor-console/internal/shared_kernel/domain"
)

type ProcessStepRequest struct {
	ProductRouteID          string `json:"product_route_id"`
	StepNumber              int    `json:"step_number"`
	StepName                string `json:"step_name"`
	RequiredMachineType     string `json:"required_machine_type"`
	BaseDurationPerUnitMins int    `json:"base_duration_per_unit_mins"`
}

func (c *Client) ListSteps(ctx context.Context) ([]domain.ProcessStep, error) {
	var steps []domain.ProcessStep
	if err := c.get(ctx, "/api/steps/", nil, &steps); err != nil {
		return nil, err
	}

	return steps, nil
}

func (c *Client) CreateStep(ctx context.Context, in ProcessStepRequest) (domain.ProcessStep, error) {
	var step domain.ProcessStep
	if err := c.post(ctx, "/api/steps/", in, &step); err != nil {
		return domain.ProcessStep{}, err
	}

	return step, nil
}

func (c *Client) UpdateStep(ctx context.Context, id domain.ID, in ProcessStepRequest) (domain.ProcessStep, error) {
	var step domain.ProcessStep
	if err := c.put(ctx, fmt.Sprintf("/api/steps/%d", id), in, &step); err != nil {
		return domain.ProcessStep{}, err
	}

	return step, nil
}

func (c *Client) DeleteStep(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/steps/%d", id))
}

func (c *Client) ImportSteps(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var result ImportResult
	if err := c.postMultipart(ctx, "/api/steps/import", filename, file, &result); err != nil {
		return ImportResult{}, err
	}

	return result, nil
}
