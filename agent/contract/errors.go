package contract

import "errors"

var (
	ErrModelInvoke         = errors.New("model invoke failed")
	ErrSchemaViolation     = errors.New("model response violates schema")
	ErrPromptMissing       = errors.New("required prompt is missing")
	ErrValidation          = errors.New("validation failed")
	ErrMissingDependency   = errors.New("agent dependency is missing")
	ErrRetrieval           = errors.New("documentation retrieval failed")
	ErrToolRetriesExceeded = errors.New("tool retry budget exceeded")
	ErrTurnStuck           = errors.New("turn took too long or got stuck")
)
