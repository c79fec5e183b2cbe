package intent

import (
	"testing"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		wantSql  string
		wantText string
	}{
		{
			name:     "clean json sql",
			raw:      `{"sql": "SELECT * FROM orders", "suggested_questions": ["¿Cuántos pedidos hay?"]}`,
			wantKind: KindSql,
			wantSql:  "SELECT * FROM orders",
		},
		{
			name:     "json wrapped in code fence",
			raw:      "```json\n{\"sql\": \"SELECT id FROM users\"}\n```",
			wantKind: KindSql,
			wantSql:  "SELECT id FROM users",
		},
		{
			name:     "json wrapped in prose",
			raw:      `Claro, aquí tienes: {"sql": "SELECT count(*) FROM users"} espero que sirva`,
			wantKind: KindSql,
			wantSql:  "SELECT count(*) FROM users",
		},
		{
			name:     "text answer json",
			raw:      `{"text_answer": "Hay 42 usuarios registrados.", "suggested_questions": []}`,
			wantKind: KindText,
			wantText: "Hay 42 usuarios registrados.",
		},
		{
			name:     "bare select without envelope",
			raw:      "SELECT *\nFROM products\nWHERE price > 10",
			wantKind: KindSql,
			wantSql:  "SELECT * FROM products WHERE price > 10",
		},
		{
			name:     "truncated sql object recovered",
			raw:      `{"sql": "SELECT * FROM users WHERE id = 1`,
			wantKind: KindSql,
			wantSql:  "SELECT * FROM users WHERE id = 1",
		},
		{
			name:     "truncated sql with escaped quotes",
			raw:      `{"sql": "SELECT * FROM users WHERE name ILIKE \"%juan%\" AND`,
			wantKind: KindSql,
			wantSql:  `SELECT * FROM users WHERE name ILIKE "%juan%" AND`,
		},
		{
			name:     "sql marker without salvageable select",
			raw:      `{"sql": "`,
			wantKind: KindText,
			wantText: FallbackAnswer,
		},
		{
			name:     "truncated text answer recovered",
			raw:      `{"text_answer": "Los pedidos más recientes son`,
			wantKind: KindText,
			wantText: "Los pedidos más recientes son",
		},
		{
			name:     "trailing semicolon stripped",
			raw:      `{"sql": "SELECT 1;"}`,
			wantKind: KindSql,
			wantSql:  "SELECT 1",
		},
		{
			name:     "free text passthrough",
			raw:      "No tengo suficiente información para responder eso.",
			wantKind: KindText,
			wantText: "No tengo suficiente información para responder eso.",
		},
		{
			name:     "empty response",
			raw:      "   \n ",
			wantKind: KindUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("Interpret(%q).Kind = %q, want %q", tt.raw, got.Kind, tt.wantKind)
			}
			if got.Sql != tt.wantSql {
				t.Errorf("Interpret(%q).Sql = %q, want %q", tt.raw, got.Sql, tt.wantSql)
			}
			if got.Answer != tt.wantText {
				t.Errorf("Interpret(%q).Answer = %q, want %q", tt.raw, got.Answer, tt.wantText)
			}
			if got.SuggestedQuestions == nil {
				t.Errorf("Interpret(%q).SuggestedQuestions is nil, want empty slice", tt.raw)
			}
		})
	}
}

func TestInterpretKeepsSuggestions(t *testing.T) {
	got := Interpret(`{"sql": "SELECT 1", "suggested_questions": ["a", "b"]}`)
	if len(got.SuggestedQuestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got.SuggestedQuestions))
	}
}
