package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewStepController(sessions *auth.Manager, service usecases.StepService) *StepController {
	return &StepController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*StepController)(nil)

type StepController struct {
	sessions *auth.Manager
	service  usecases.StepService
}

func (c *StepController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/steps", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("POST /v1/steps", manage(c.create()))
	router.Handle("PUT /v1/steps/{id}", manage(c.update()))
	router.Handle("DELETE /v1/steps/{id}", manage(c.delete()))
	router.Handle("POST /v1/steps/import", manage(c.importCSV()))
}

func (c *StepController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steps, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, steps)
	}
}

func (c *StepController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.ProcessStepRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		step, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, step)
	}
}

func (c *StepController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.ProcessStepRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		step, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, step)
	}
}

func (c *StepController) delete() http.HandlerFunc {
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

func (c *StepController) importCSV() http.HandlerFunc {
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
