package apperrors

import "fmt"

// Kind classifies an error so the HTTP layer and the scheduler can react
// without string matching.
type Kind string

const (
	KindInputRejected       Kind = "input_rejected"
	KindProviderBlocked     Kind = "provider_blocked"
	KindProviderTruncated   Kind = "provider_truncated"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindIntentUnparseable   Kind = "intent_unparseable"
	KindSqlRejected         Kind = "sql_rejected"
	KindExecutionFailed     Kind = "execution_failed"
	KindScheduleInvalid     Kind = "schedule_invalid"
	KindNotFound            Kind = "not_found"
)

type AppError struct {
	Kind    Kind
	Message string // user-facing, already sanitized
	Err     error  // underlying cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func InputRejected(message string) *AppError {
	return New(KindInputRejected, message)
}

func SqlRejected(message string) *AppError {
	return New(KindSqlRejected, message)
}

func ScheduleInvalid(message string) *AppError {
	return New(KindScheduleInvalid, message)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}
