package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	"shopfloor-console/internal/shopfloor/domain"
	"shopfloor-console/internal/shopfloor/usecases"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

func NewOperatorController(
	sessions *auth.Manager,
	queues usecases.QueueService,
	actions usecases.TaskActionService,
	journal *usecases.Journal,
) *OperatorController {
	return &OperatorController{
		sessions: sessions,
		queues:   queues,
		actions:  actions,
		journal:  journal,
	}
}

var _ httpserver.Controller = (*OperatorController)(nil)

type OperatorController struct {
	sessions *auth.Manager
	queues   usecases.QueueService
	actions  usecases.TaskActionService
	journal  *usecases.Journal
}

func (c *OperatorController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /v1/operators/{machine_id_code}/queue", auth.RequireAuthenticated(c.sessions, c.getQueue()))
	router.Handle("POST /v1/operators/tasks/{id}/{action}", auth.RequireAuthenticated(c.sessions, c.dispatchAction()))
	router.Handle("GET /v1/operators/actions", auth.RequireAuthenticated(c.sessions, c.listActions()))
}

func (c *OperatorController) getQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machineIDCode := r.PathValue("machine_id_code")
		if machineIDCode == "" {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "machine_id_code is required")
			return
		}

		snapshot, err := c.queues.Queue(r.Context(), machineIDCode)
		if err != nil {
			httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, snapshot)
	}
}

type actionRequest struct {
	MachineIDCode string `json:"machine_id_code"`
	Reason        string `json:"reason,omitempty"`
}

func (c *OperatorController) dispatchAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "task id must be numeric")
			return
		}

		action, err := domain.ParseAction(r.PathValue("action"))
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body actionRequest
		if err := httpserver.DecodeJSONBody(r, &body); err != nil {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.MachineIDCode == "" {
			httpserver.ReplyWithError(w, http.StatusBadRequest, "machine_id_code is required")
			return
		}

		snapshot, err := c.actions.Dispatch(r.Context(), usecases.ActionCommand{
			MachineIDCode: body.MachineIDCode,
			TaskID:        shared.ID(taskID),
			Action:        action,
			Reason:        body.Reason,
			Actor:         c.sessions.Subject(),
		})
		if err != nil {
			httpserver.ReplyWithError(w, actionStatus(err), err.Error())
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, snapshot)
	}
}

func actionStatus(err error) int {
	switch {
	case errors.Is(err, usecases.ErrActionInFlight):
		return http.StatusConflict
	case errors.Is(err, usecases.ErrTaskNotInQueue),
		errors.Is(err, domain.ErrActionNotAllowed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrUnknownReason),
		errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest
	default:
		return backend.HTTPStatus(err)
	}
}

func (c *OperatorController) listActions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := httpserver.ExtractPaginationParams(r)

		records, err := c.journal.Recent(r.Context(), params.Limit)
		if err != nil {
			httpserver.ReplyWithError(w, http.StatusInternalServerError, "failed to list actions")
			return
		}

		httpserver.ReplyJSONResponse(w, http.StatusOK, records)
	}
}
