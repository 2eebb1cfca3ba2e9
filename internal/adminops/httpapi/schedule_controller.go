package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewScheduleController(sessions *auth.Manager, service usecases.ScheduleService) *ScheduleController {
	return &ScheduleController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*ScheduleController)(nil)

type ScheduleController struct {
	sessions *auth.Manager
	service  usecases.ScheduleService
}

func (c *ScheduleController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/schedule", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("PUT /v1/schedule/{id}", manage(c.update()))
	router.Handle("DELETE /v1/schedule/{id}", manage(c.delete()))
	router.Handle("POST /v1/schedule/generate", manage(c.generate()))
	router.Handle("GET /v1/schedule/gantt", auth.RequireAuthenticated(c.sessions, c.gantt()))
}

func (c *ScheduleController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, tasks)
	}
}

func (c *ScheduleController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.TaskUpdateRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		task, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, task)
	}
}

func (c *ScheduleController) delete() http.HandlerFunc {
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

// generate triggers a scheduling run upstream. The run can take a while;
// the backend owns the solver, the console just relays the verdict.
func (c *ScheduleController) generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.GenerateScheduleRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := c.service.Generate(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, result)
	}
}

func (c *ScheduleController) gantt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		figure, err := c.service.Gantt(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, figure)
	}
}
