package httpapi

import (
	"net/http"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewUserController(sessions *auth.Manager, service usecases.UserService) *UserController {
	return &UserController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*UserController)(nil)

// UserController is admin-only end to end; managers do not see accounts.
type UserController struct {
	sessions *auth.Manager
	service  usecases.UserService
}

func (c *UserController) AddRoutes(router *http.ServeMux) {
	admin := auth.RequireRole(c.sessions, shared.RoleAdmin)

	router.Handle("GET /v1/users", admin(c.list()))
	router.Handle("POST /v1/users", admin(c.create()))
	router.Handle("GET /v1/users/{id}", admin(c.get()))
	router.Handle("PATCH /v1/users/{id}", admin(c.patch()))
	router.Handle("DELETE /v1/users/{id}", admin(c.delete()))
}

func (c *UserController) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := c.service.List(r.Context())
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, users)
	}
}

func (c *UserController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.UserRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, user)
	}
}

func (c *UserController) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := c.service.Get(r.Context(), id)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, user)
	}
}

func (c *UserController) patch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.UserRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := c.service.Patch(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, user)
	}
}

func (c *UserController) delete() http.HandlerFunc {
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
