package xerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Common reusable application errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
)

// maxQueryText bounds the SQL text kept on a QueryError for logging.
const maxQueryText = 50

// ValidationError reports caller input that violates a precondition.
// It is raised before any database round-trip.
type ValidationError struct {
	Op         string
	Violations []string
}

func NewValidationError(op string, violations []string) *ValidationError {
	return &ValidationError{Op: op, Violations: violations}
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Violations, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// QueryError wraps any failure below the validation boundary: connectivity,
// pool exhaustion, SQL execution or row projection. Message is safe to show
// to API clients; Err keeps the driver detail for logs.
type QueryError struct {
	Op      string
	Message string
	Query   string
	Err     error
}

func NewQueryError(op, message, query string, err error) *QueryError {
	return &QueryError{
		Op:      op,
		Message: message,
		Query:   TruncateQuery(query),
		Err:     err,
	}
}

func (e *QueryError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrInternal
}

// TruncateQuery collapses whitespace and cuts SQL text for log lines.
func TruncateQuery(query string) string {
	q := strings.Join(strings.Fields(query), " ")
	if len(q) > maxQueryText {
		return q[:maxQueryText]
	}
	return q
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// AsValidation extracts a *ValidationError from the chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsQuery extracts a *QueryError from the chain.
func AsQuery(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
