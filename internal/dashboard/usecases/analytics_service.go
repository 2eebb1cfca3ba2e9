package usecases

import (
	"context"
	"encoding/json"

	"shopfloor-console/internal/infra/cache"
)

type AnalyticsGateway interface {
	AnalyticsSummary(ctx context.Context) (json.RawMessage, error)
}

type AnalyticsService interface {
	Summary(ctx context.Context) (json.RawMessage, error)
}

func NewAnalyticsService(gateway AnalyticsGateway, queryCache cache.Cache) *SimpleAnalyticsService {
	return &SimpleAnalyticsService{gateway: gateway, queryCache: queryCache}
}

var _ AnalyticsService = (*SimpleAnalyticsService)(nil)

// SimpleAnalyticsService relays the upstream analytics document as-is.
// The upstream owns its shape; the console only shields it from
// per-viewer request storms.
type SimpleAnalyticsService struct {
	gateway    AnalyticsGateway
	queryCache cache.Cache
}

func (s *SimpleAnalyticsService) Summary(ctx context.Context) (json.RawMessage, error) {
	return cache.Fetch(ctx, s.queryCache, cache.KeyAnalyticsSummary, cache.LiveStaleTime, func() (json.RawMessage, error) {
		return s.gateway.AnalyticsSummary(ctx)
	})
}
