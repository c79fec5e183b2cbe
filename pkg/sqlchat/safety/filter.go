package safety

import (
	"regexp"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

// Destructive-intent patterns checked against the raw question before any
// LLM call. Covers SQL verbs directly and their Spanish natural-language
// equivalents combined with a data object. This is a cheap pre-filter; the
// SQL gate still holds independently.
var dangerousInputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(delete|drop|truncate|alter|update|insert|create|grant|revoke)\b`),
	regexp.MustCompile(`(?i)\bfrom\s+(delete|drop|truncate|alter|update|insert|create)\b`),
	regexp.MustCompile(`(?i)\b(elimina|borra|destruye|modifica|actualiza|inserta|crea)\s+(l[ao]s?\s+|el\s+|un[ao]?s?\s+)?(tablas?|bases?|datos|registros?)`),
}

// CheckQuestion rejects questions that ask for destructive operations.
func CheckQuestion(question string) error {
	for _, pattern := range dangerousInputPatterns {
		if pattern.MatchString(question) {
			return apperrors.InputRejected("La pregunta contiene comandos SQL no permitidos. Solo se permiten consultas de lectura (SELECT).")
		}
	}
	return nil
}
