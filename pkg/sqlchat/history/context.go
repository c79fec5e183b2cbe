package history

import (
	"strings"
)

// Turn is one prior exchange entry, already loaded from the conversation
// store.
type Turn struct {
	Role     string // "user" | "assistant"
	Content  string
	SqlQuery *string
}

const (
	// maxTurns keeps the prompt from saturating: the last two exchanges.
	maxTurns = 4
	// sqlPreviewLen truncates long queries inside the context block.
	sqlPreviewLen = 150
)

// Build formats the conversational context block for the generation prompt.
// An empty history produces an empty string so the section can be omitted
// entirely.
func Build(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	var b strings.Builder
	b.WriteString("CONTEXTO CONVERSACIONAL:\n")
	for _, turn := range turns {
		switch turn.Role {
		case "user":
			if turn.Content != "" {
				b.WriteString("Usuario: \"" + turn.Content + "\"\n")
			}
		case "assistant":
			if turn.Content != "" {
				b.WriteString("Asistente: " + turn.Content + "\n")
			}
			if turn.SqlQuery != nil && *turn.SqlQuery != "" {
				b.WriteString("SQL: " + previewSql(*turn.SqlQuery) + "\n")
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func previewSql(sql string) string {
	runes := []rune(sql)
	if len(runes) > sqlPreviewLen {
		return string(runes[:sqlPreviewLen]) + "..."
	}
	return sql
}
