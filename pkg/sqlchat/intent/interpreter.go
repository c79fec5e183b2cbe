package intent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind discriminates the tagged union produced by Interpret. Downstream code
// switches on Kind only; it never re-inspects raw LLM output.
type Kind string

const (
	KindSql         Kind = "sql"
	KindText        Kind = "text"
	KindUnparseable Kind = "unparseable"
)

// Intent is the structured outcome of interpreting one LLM response.
type Intent struct {
	Kind               Kind
	Sql                string
	Answer             string
	SuggestedQuestions []string
}

// FallbackAnswer is emitted when a truncated SQL object cannot be recovered.
const FallbackAnswer = "No se pudo procesar la respuesta del asistente. Intenta reformular tu pregunta."

var (
	codeFenceRe     = regexp.MustCompile("```(?:json)?\n?")
	outerJSONRe     = regexp.MustCompile(`(?s)\{.*\}`)
	selectPrefixRe  = regexp.MustCompile(`(?i)^select\b`)
	sqlMarkerRe     = regexp.MustCompile(`"sql"\s*:\s*"`)
	textMarkerRe    = regexp.MustCompile(`"text_answer"\s*:\s*"`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// Interpret runs an ordered chain of total parse attempts over one raw LLM
// response. Every layer either produces an intent or passes to the next; the
// chain itself never fails, so the only Unparseable case is an empty response.
func Interpret(raw string) Intent {
	cleaned := clean(raw)
	if cleaned == "" {
		return Intent{Kind: KindUnparseable, SuggestedQuestions: []string{}}
	}

	candidate := narrowToJSON(cleaned)

	if it, ok := parseStrictJSON(candidate); ok {
		return it
	}
	if it, ok := parsePlainSelect(cleaned); ok {
		return it
	}
	if it, ok := recoverTruncatedSql(cleaned); ok {
		return it
	}
	if it, ok := recoverTruncatedText(cleaned); ok {
		return it
	}

	// Pure free-text fallback: hand the cleaned text back verbatim.
	return textIntent(cleaned, nil)
}

// clean strips markdown code fences and surrounding whitespace.
func clean(raw string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))
}

// narrowToJSON reduces text that wraps a JSON object in prose down to the
// outermost {...} span.
func narrowToJSON(cleaned string) string {
	if strings.Contains(cleaned, "{") && strings.Contains(cleaned, "}") {
		if match := outerJSONRe.FindString(cleaned); match != "" {
			return match
		}
	}
	return cleaned
}

type llmPayload struct {
	Sql                string   `json:"sql"`
	TextAnswer         string   `json:"text_answer"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

func parseStrictJSON(candidate string) (Intent, bool) {
	var payload llmPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return Intent{}, false
	}
	if sql := strings.TrimSpace(payload.Sql); sql != "" {
		return sqlIntent(sql, payload.SuggestedQuestions), true
	}
	if answer := strings.TrimSpace(payload.TextAnswer); answer != "" {
		return textIntent(answer, payload.SuggestedQuestions), true
	}
	// Valid JSON without the expected keys: let later layers decide.
	return Intent{}, false
}

// parsePlainSelect handles the legacy case of the model answering with bare
// SQL instead of the JSON envelope.
func parsePlainSelect(cleaned string) (Intent, bool) {
	normalized := strings.TrimSpace(whitespaceRunRe.ReplaceAllString(cleaned, " "))
	if !selectPrefixRe.MatchString(normalized) {
		return Intent{}, false
	}
	return sqlIntent(normalized, nil), true
}

// recoverTruncatedSql salvages SQL out of a malformed or token-limit-cut
// {"sql": "..."} object. Once the "sql" marker is present the chain always
// terminates here, either with the recovered query or with a fixed apology.
func recoverTruncatedSql(cleaned string) (Intent, bool) {
	if !strings.Contains(cleaned, `"sql"`) {
		return Intent{}, false
	}
	recovered := recoverAfterMarker(cleaned, sqlMarkerRe)
	if selectPrefixRe.MatchString(recovered) {
		return sqlIntent(recovered, nil), true
	}
	return textIntent(FallbackAnswer, nil), true
}

func recoverTruncatedText(cleaned string) (Intent, bool) {
	if !strings.Contains(cleaned, `"text_answer"`) {
		return Intent{}, false
	}
	recovered := recoverAfterMarker(cleaned, textMarkerRe)
	if recovered == "" {
		return Intent{}, false
	}
	return textIntent(recovered, nil), true
}

// recoverAfterMarker extracts the string value following a `"key":"` marker,
// drops a dangling suggested_questions fragment and closing punctuation,
// un-escapes quotes and newlines, and collapses whitespace.
func recoverAfterMarker(cleaned string, marker *regexp.Regexp) string {
	loc := marker.FindStringIndex(cleaned)
	if loc == nil {
		return ""
	}
	rest := cleaned[loc[1]:]

	if i := strings.Index(rest, `"suggested_questions"`); i >= 0 {
		rest = rest[:i]
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimRight(rest, "}")
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, ",")
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, `"`)

	rest = strings.ReplaceAll(rest, `\"`, `"`)
	rest = strings.ReplaceAll(rest, `\n`, " ")
	rest = whitespaceRunRe.ReplaceAllString(rest, " ")

	return strings.TrimSpace(rest)
}

func sqlIntent(sql string, suggestions []string) Intent {
	sql = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	return Intent{Kind: KindSql, Sql: sql, SuggestedQuestions: normalize(suggestions)}
}

func textIntent(answer string, suggestions []string) Intent {
	return Intent{Kind: KindText, Answer: answer, SuggestedQuestions: normalize(suggestions)}
}

func normalize(suggestions []string) []string {
	if suggestions == nil {
		return []string{}
	}
	return suggestions
}
