package service

import "errors"

// Sentinel errors returned by the workspace services. Handlers map these
// onto typed response codes.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrInvalidMode       = errors.New("invalid mode")
	ErrNoActiveSession   = errors.New("no active session")
	ErrEmptyMessage      = errors.New("empty message")
	ErrOperationInFlight = errors.New("operation already in flight")
	ErrUploadInFlight    = errors.New("upload already in flight")
	ErrNoPendingQuestion = errors.New("no pending question")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrFileTooLarge      = errors.New("file too large")
)
