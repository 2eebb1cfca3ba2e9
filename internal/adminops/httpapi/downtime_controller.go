package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewDowntimeController(sessions *auth.Manager, service usecases.DowntimeService) *DowntimeController {
	return &DowntimeController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*DowntimeController)(nil)

type DowntimeController struct {
	sessions *auth.Manager
	service  usecases.DowntimeService
}

func (c *DowntimeController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/downtimes", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("POST /v1/downtimes", manage(c.create()))
	router.Handle("PUT /v1/downtimes/{id}", manage(c.update()))
	router.Handle("DELETE /v1/downtimes/{id}", manage(c.delete()))
	router.Handle("POST /v1/downtimes/import", manage(c.importCSV()))
}

func (c *DowntimeController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, events)
	}
}

func (c *DowntimeController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.DowntimeRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		event, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, event)
	}
}

func (c *DowntimeController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.DowntimeRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		event, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, event)
	}
}

func (c *DowntimeController) delete() http.HandlerFunc {
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

func (c *DowntimeController) importCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, filename, ok := importFile(w, r)
		if !ok {
			return
		}
		defer file.Close()

		result, err := c.service.Import(r.Context(), filename, file)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, result)
	}
}
