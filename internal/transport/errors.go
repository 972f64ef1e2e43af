package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/comment"
	"github.com/crewlog/crewlog/internal/domain/file"
	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/domain/task"
	"github.com/crewlog/crewlog/internal/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps core error taxonomy to HTTP status codes. Denials and
// missing memberships both surface as 403 without detail, so responses
// don't reveal why access failed.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, authz.ErrForbidden), errors.Is(err, membership.ErrNoAccess):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, membership.ErrDuplicateMember),
		errors.Is(err, membership.ErrOwnerRequired),
		errors.Is(err, membership.ErrOwnerExists),
		errors.Is(err, group.ErrDuplicateMember),
		errors.Is(err, repository.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, authz.ErrInvalidRole),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, comment.ErrInvalidInput),
		errors.Is(err, file.ErrInvalidInput),
		errors.Is(err, group.ErrInvalidInput),
		errors.Is(err, group.ErrNotProjectMember),
		errors.Is(err, activity.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		logger.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
