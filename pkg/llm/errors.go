package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the provider answered successfully but
// produced no usable text at all.
var ErrEmptyResponse = errors.New("llm: empty response")

// BlockedError signals that the provider refused to answer (safety or
// recitation filter). Callers must surface this distinctly from a generic
// failure.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("llm: response blocked by provider (%s)", e.Reason)
}

// TruncatedError signals that the provider hit its token limit before
// producing any salvageable text. Partial text is returned without error so
// the caller's recovery logic can run on it.
type TruncatedError struct {
	Reason string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("llm: response truncated by provider (%s)", e.Reason)
}
