package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewJobLogController(sessions *auth.Manager, service usecases.JobLogService) *JobLogController {
	return &JobLogController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*JobLogController)(nil)

type JobLogController struct {
	sessions *auth.Manager
	service  usecases.JobLogService
}

func (c *JobLogController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/job-logs", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("POST /v1/job-logs", manage(c.create()))
	router.Handle("PUT /v1/job-logs/{id}", manage(c.update()))
	router.Handle("DELETE /v1/job-logs/{id}", manage(c.delete()))
}

func (c *JobLogController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, logs)
	}
}

func (c *JobLogController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.JobLogRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		log, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, log)
	}
}

func (c *JobLogController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.JobLogRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		log, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, log)
	}
}

func (c *JobLogController) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !confirmRequired(w, r) {
			return
		}

		if err := c.service.Delete(r.Context(), id); err != nil {
			replyServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
