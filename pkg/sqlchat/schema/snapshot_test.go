package schema

import (
	"strings"
	"testing"

	"ai-sqlchat-be/internal/model"
)

func TestDescribeListsTablesAndColumns(t *testing.T) {
	snapshot := NewSnapshot(model.All())

	got, err := snapshot.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	if !strings.HasPrefix(got, "TABLAS Y ESTRUCTURA DETECTADA AUTOMÁTICAMENTE:\n\n") {
		t.Errorf("missing header: %q", got)
	}
	for _, table := range []string{"users", "conversations", "conversation_messages", "scheduled_tasks"} {
		if !strings.Contains(got, table+" (") {
			t.Errorf("missing table %q in description", table)
		}
	}
	if !strings.Contains(got, "question") || !strings.Contains(got, "next_run_at") {
		t.Errorf("scheduled task columns missing: %q", got)
	}
}

func TestDescribeHidesSensitiveColumns(t *testing.T) {
	snapshot := NewSnapshot(model.All())

	got, err := snapshot.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	if strings.Contains(got, "password_hash") {
		t.Errorf("password_hash must not be exposed: %q", got)
	}
}

func TestDescribeMarksSoftDeleteTables(t *testing.T) {
	snapshot := NewSnapshot(model.All())

	got, err := snapshot.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, " conversations (") && !strings.HasSuffix(line, "[SOFT DELETE]") {
			t.Errorf("conversations should carry soft delete marker: %q", line)
		}
	}
}

func TestDescribeListsRelations(t *testing.T) {
	snapshot := NewSnapshot(model.All())

	got, err := snapshot.Describe()
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	if !strings.Contains(got, "RELACIONES:\n") {
		t.Fatalf("missing relations section: %q", got)
	}
	if !strings.Contains(got, "conversations -> conversation_messages (relación 1:N)") {
		t.Errorf("missing conversation relation: %q", got)
	}
}
