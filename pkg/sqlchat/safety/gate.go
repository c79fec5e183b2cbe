package safety

import (
	"regexp"
	"strings"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

// Keywords that must never appear in generated SQL. Matched on word
// boundaries so column names like "deleted_at" do not trip the gate.
var dangerousKeywordRe = regexp.MustCompile(`\b(drop|delete|update|insert|alter|truncate|create|grant|revoke)\b`)

var limitClauseRe = regexp.MustCompile(`\blimit\b`)

// ValidateAndNormalize is the sole gate between generated text and execution.
// It rejects anything that is not a bounded SELECT and appends LIMIT 100 when
// the query carries no explicit limit. The returned SQL is the only form that
// may be executed.
func ValidateAndNormalize(sql string) (string, error) {
	// The terminator is dropped first so it never survives, LIMIT or not.
	trimmed := strings.TrimRight(strings.TrimSpace(sql), "; \t\n")
	lowered := strings.ToLower(trimmed)

	if !strings.HasPrefix(lowered, "select") {
		return "", apperrors.SqlRejected("Solo se permiten queries SELECT")
	}

	if match := dangerousKeywordRe.FindString(lowered); match != "" {
		return "", apperrors.SqlRejected("Query contiene palabra clave no permitida: " + match)
	}

	if !limitClauseRe.MatchString(lowered) {
		trimmed += " LIMIT 100"
	}

	return trimmed, nil
}
