package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/backend"
	"shopfloor-console/internal/infra/httpserver"
	shared "shopfloor-console/internal/shared_kernel/domain"
)

const _maxImportSize = 16 << 20 // 16MB

func pathID(r *http.Request) (shared.ID, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("id must be numeric")
	}

	return shared.ID(id), nil
}

func replyServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecases.ErrValidation) {
		httpserver.ReplyWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpserver.ReplyWithError(w, backend.HTTPStatus(err), err.Error())
}

// confirmRequired enforces the delete confirmation contract: without
// confirm=true the console refuses the call with 428 and the client
// renders its confirmation prompt.
func confirmRequired(w http.ResponseWriter, r *http.Request) bool {
	if httpserver.GetQueryParam(r, "confirm") != "true" {
		httpserver.ReplyWithError(w, http.StatusPreconditionRequired, "destructive call requires confirm=true")
		return false
	}

	return true
}

func importFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	if err := r.ParseMultipartForm(_maxImportSize); err != nil {
		httpserver.ReplyWithError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpserver.ReplyWithError(w, http.StatusBadRequest, "file field is required")
		return nil, "", false
	}

	return file, header.Filename, true
}
