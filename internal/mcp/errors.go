package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/confsched/internal/cfgtemplate"
	"github.com/rpggio/confsched/internal/domain/task"
)

// APIError is the error a tool reports back to the client.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to tool error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, task.ErrProtected):
		return &APIError{Code: "PROTECTED", Message: err.Error(), RecoveryHint: "global.yml cannot be scheduled"}
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, task.ErrInvalidWindow),
		errors.Is(err, task.ErrInvalidFilename),
		errors.Is(err, cfgtemplate.ErrInvalidRequest):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Dates use YYYY-MM-DD and start <= end"}
	case errors.Is(err, task.ErrDuplicate):
		return &APIError{Code: "DUPLICATE", Message: err.Error(), RecoveryHint: "Use force_add_task to overwrite"}
	case errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error(), RecoveryHint: "Check list_tasks"}
	case errors.Is(err, task.ErrFileMissing):
		return &APIError{Code: "FILE_MISSING", Message: err.Error(), RecoveryHint: "Run reconcile"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
