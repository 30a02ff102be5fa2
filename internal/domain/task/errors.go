package task

import "errors"

var (
	// ErrInvalidInput indicates missing or malformed fields.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrInvalidFilename indicates a filename that is not a plain file name.
	ErrInvalidFilename = errors.New("invalid config filename")
	// ErrInvalidWindow indicates an end date before the start date.
	ErrInvalidWindow = errors.New("end date must not be before start date")
	// ErrProtected indicates an operation targeting the global config.
	ErrProtected = errors.New("global config is protected")
	// ErrDuplicate indicates a task already exists for the filename.
	ErrDuplicate = errors.New("task already exists")
	// ErrTaskNotFound indicates nothing exists for the filename.
	ErrTaskNotFound = errors.New("task not found")
	// ErrFileMissing indicates the config file is in neither directory.
	ErrFileMissing = errors.New("config file missing")
)
