// Package errors provides the standardized error type shared by the
// automation pipeline and its Zeebe workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Pipeline errors
const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeNoStrategyFound  ErrorCode = "NO_STRATEGY_FOUND"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeDraftingFailed   ErrorCode = "DRAFTING_FAILED"
	ErrCodeQualityCheck     ErrorCode = "QUALITY_CHECK_FAILED"
	ErrCodeStorageFailed    ErrorCode = "STORAGE_FAILED"
	ErrCodeJobTerminal      ErrorCode = "JOB_TERMINAL"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Worker errors
const (
	ErrCodeParseError   ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeBroker       ErrorCode = "BROKER_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches another StandardError by code, so errors.Is(err, &StandardError{Code: X}) works.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNotFoundError reports a missing application or job.
func NewNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Metadata:  map[string]interface{}{"resource": resource, "id": id},
		Timestamp: time.Now().UTC(),
	}
}

// NewNoStrategyFoundError reports a service type no strategy claims.
func NewNoStrategyFoundError(serviceType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoStrategyFound,
		Message:   "No automation strategy found for service type",
		Details:   serviceType,
		Retryable: false,
		Metadata:  map[string]interface{}{"serviceType": serviceType},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError reports a checklist or cross-field violation. reason
// is shown to people as-is.
func NewValidationError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingDocumentsError lists every missing document tag in one error.
func NewMissingDocumentsError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Missing required documents",
		Details:   strings.Join(missing, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"missing": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftingError wraps a render or write failure.
func NewDraftingError(document string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftingFailed,
		Message:   fmt.Sprintf("Failed to draft %s", document),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"document": document},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewQualityCheckError reports generated artifacts that failed inspection.
func NewQualityCheckError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQualityCheck,
		Message:   "Generated documents failed quality check",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageError wraps a repository or artifact store failure.
func NewStorageError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailed,
		Message:   fmt.Sprintf("Storage operation %s failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewJobTerminalError rejects writes to a finished job.
func NewJobTerminalError(jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeJobTerminal,
		Message:   "Job already finished",
		Details:   fmt.Sprintf("jobId: %s", jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError reports job variables that are not valid JSON.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Job variables could not be parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewBrokerError reports a Zeebe command that failed. Transient failures
// are retryable.
func NewBrokerError(operation string, retryable bool, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBroker,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewInvalidInputError reports worker variables that failed schema checks.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid worker input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps anything uncategorized, including recovered panics.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf returns the code of the first StandardError in err's chain, or
// INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsCode reports whether err carries code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ToErrorVariables returns a map suitable for Zeebe job error variables.
func (e *StandardError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    string(e.Code),
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
		"timestamp":    e.Timestamp.Format(time.RFC3339),
	}
	for k, v := range e.Metadata {
		vars[k] = v
	}
	return vars
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(codeStr, "STRATEGY"):
		return "DISPATCH"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DRAFTING") || strings.Contains(codeStr, "QUALITY"):
		return "DRAFTING"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "BROKER"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
