package backend

import (
	"context"
	"encoding/json"
)

// AnalyticsSummary is passed through untouched. The backend computes the
// aggregation, the console only caches it.
func (c *Client) AnalyticsSummary(ctx context.Context) (json.RawMessage, error) {
	var summary json.RawMessage
	if err := c.get(ctx, "/api/analytics/summary", nil, &summary); err != nil {
		return nil, err
	}

	return summary, nil
}
