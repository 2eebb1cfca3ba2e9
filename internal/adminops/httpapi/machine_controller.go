package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewMachineController(sessions *auth.Manager, service usecases.MachineService) *MachineController {
	return &MachineController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*MachineController)(nil)

type MachineController struct {
	sessions *auth.Manager
	service  usecases.MachineService
}

func (c *MachineController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/machines", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("POST /v1/machines", manage(c.create()))
	router.Handle("PUT /v1/machines/{id}", manage(c.update()))
	router.Handle("DELETE /v1/machines/{id}", manage(c.delete()))
	router.Handle("POST /v1/machines/import", manage(c.importCSV()))
}

func (c *MachineController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machines, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, machines)
	}
}

func (c *MachineController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.MachineRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		machine, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, machine)
	}
}

func (c *MachineController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.MachineRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		machine, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, machine)
	}
}

func (c *MachineController) delete() http.HandlerFunc {
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

func (c *MachineController) importCSV() http.HandlerFunc {
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
