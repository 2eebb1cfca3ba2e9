package httpapi

import (
	"net/http"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/dashboard/usecases"
	"shopfloor-console/internal/infra/httpserver"
	"shopfloor-console/internal/infra/utils"
)

func NewDashboardController(
	sessions *auth.Manager,
	summaries usecases.SummaryService,
	analytics usecases.AnalyticsService,
	defaultTimezone string,
) *DashboardController {
	return &DashboardController{
		sessions:        sessions,
		summaries:       summaries,
		analytics:       analytics,
		defaultTimezone: defaultTimezone,
	}
}

var _ httpserver.Controller = (*DashboardController)(nil)

type DashboardController struct {
	sessions        *auth.Manager
	summaries       usecases.SummaryService
	analytics       usecases.AnalyticsService
	defaultTimezone string
}

func (c *DashboardController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/dashboard/summary", auth.RequireAuthenticated(c.sessions, c.summary()))
	router.Handle("GET /v1/analytics/summary", auth.RequireAuthenticated(c.sessions, c.analyticsSummary()))
}

func (c *DashboardController) summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timezone := r.URL.Query().Get("tz")
		if timezone == "" {
			timezone = c.defaultTimezone
		}
		if !utils.IsValidTimezone(timezone) {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "unknown timezone")
			return
		}

		summary, err := c.summaries.Summary(r.Context(), timezone)
		if err != nil {
			httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, summary)
	}
}

func (c *DashboardController) analyticsSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := c.analytics.Summary(r.Context())
		if err != nil {
			httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, summary)
	}
}
