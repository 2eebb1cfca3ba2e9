package backend

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"shopfloor-console/internal/infra/utils"
	"shopfloor-console/internal/shared_kernel/domain"
)

type OrderRequest struct {
	OrderIDCode       string             `json:"order_id_code"`
	ProductName       string             `json:"product_name"`
	ProductRouteID    string             `json:"product_route_id"`
	QuantityToProduce int                `json:"quantity_to_produce"`
	Priority          int                `json:"priority"`
	ArrivalTime       utils.Time         `json:"arrival_time"`
	DueDate           *utils.Time        `json:"due_date,omitempty"`
	CurrentStatus     domain.OrderStatus `json:"current_status,omitempty"`
}

func (c *Client) ListOrders(ctx context.Context, filter url.Values) ([]domain.ProductionOrder, error) {
	var orders []domain.ProductionOrder
	if err := c.get(ctx, "/api/orders/", filter, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	if err := c.post(ctx, "/api/orders/", in, &order); err != nil {
		return domain.ProductionOrder{}, err
	}

	return order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id domain.ID, in OrderRequest) (domain.ProductionOrder, error) {
	var order domain.ProductionOrder
	if err := c.put(ctx, fmt.Sprintf("/api/orders/%d", id), in, &order); err != nil {
		return domain.ProductionOrder{}, err
	}

	return order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id domain.ID) error {
	return c.delete(ctx, fmt.Sprintf("/api/orders/%d", id))
}

func (c *Client) ImportOrders(ctx context.Context, filename string, file io.Reader) (ImportResult, error) {
	var result ImportResult
	if err := c.postMultipart(ctx, "/api/orders/import", filename, file, &result); err != nil {
		return ImportResult{}, err
	}

	return result, nil
}
