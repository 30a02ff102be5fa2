package transport

import (
	"errors"
	"net/http"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/task"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, task.ErrProtected):
		return http.StatusForbidden
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidWindow),
		errors.Is(err, task.ErrInvalidFilename),
		errors.Is(err, cfgtemplate.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, task.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, task.ErrFileMissing):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "operation", op, "error", err)
	} else {
		s.logger.Warn("request rejected", "operation", op, "status", status, "error", err)
	}
	http.Error(w, op+" failed: "+err.Error(), status)
}
