package models

import "errors"

// Error taxonomy shared by repositories, services and handlers. Wrapped with
// fmt.Errorf("...: %w") at the point of failure and matched with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrTooLarge             = errors.New("file too large")
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
	ErrEvaluationFailed     = errors.New("evaluation failed")
	ErrGenerationExhausted  = errors.New("job id generation exhausted")
)
