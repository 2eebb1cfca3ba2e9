package httpapi

import (
	"net/http"
	"net/url"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewOrderController(sessions *auth.Manager, service usecases.OrderService) *OrderController {
	return &OrderController{sessions: sessions, service: service}
}

var _ httpserver.Controller = (*OrderController)(nil)

type OrderController struct {
	sessions *auth.Manager
	service  usecases.OrderService
}

func (c *OrderController) AddRoutes(router *http.ServeMux) {
	manage := auth.RequireRole(c.sessions, shared.RoleAdmin, shared.RoleManager)

	router.Handle("GET /v1/orders", auth.RequireAuthenticated(c.sessions, c.list()))
	router.Handle("POST /v1/orders", manage(c.create()))
	router.Handle("PUT /v1/orders/{id}", manage(c.update()))
	router.Handle("DELETE /v1/orders/{id}", manage(c.delete()))
	router.Handle("POST /v1/orders/import", manage(c.importCSV()))
}

// list forwards the whitelisted filter parameters so distinct filters
// cache under distinct keys.
func (c *OrderController) list() http.HandlerFunc {
	filterParams := []string{"current_status", "priority", "product_route_id"}

	return func(w http.ResponseWriter, r *http.Request) {
		filter := url.Values{}
		for _, name := range filterParams {
			if value := httpserver.GetQueryParam(r, name); value != "" {
				filter.Set(name, value)
			}
		}

		orders, err := c.service.List(r.Context(), filter)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, orders)
	}
}

func (c *OrderController) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.OrderRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := c.service.Create(r.Context(), body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusCreated, order)
	}
}

func (c *OrderController) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body backend.OrderRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := c.service.Update(r.Context(), id, body)
		if err != nil {
			replyServiceError(w, err)
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, order)
	}
}

func (c *OrderController) delete() http.HandlerFunc {
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

func (c *OrderController) importCSV() http.HandlerFunc {
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
