package schema

import (
	"fmt"
	"strings"
	"sync"

	gormschema "gorm.io/gorm/schema"
)

// Columns that are never exposed to the AI, regardless of table.
var ignoredColumns = map[string]bool{
	"password_hash":        true,
	"encrypted_password":   true,
	"reset_password_token": true,
	"confirmation_token":   true,
	"unlock_token":         true,
	"token_hash":           true,
	"api_key":              true,
}

// Framework bookkeeping tables that carry no business meaning.
var ignoredTables = map[string]bool{
	"schema_migrations":    true,
	"ar_internal_metadata": true,
	"goose_db_version":     true,
}

// Snapshot derives a textual schema description from the registered GORM
// models. Nothing is cached between calls: each Describe walks the model
// metadata again, so the description can never go stale relative to the
// registry.
type Snapshot struct {
	models []any
	namer  gormschema.Namer
}

func NewSnapshot(models []any) *Snapshot {
	return &Snapshot{
		models: models,
		namer:  gormschema.NamingStrategy{},
	}
}

// Describe renders the numbered table list followed by the relations section,
// in the exact shape the generation prompt embeds.
func (s *Snapshot) Describe() (string, error) {
	var b strings.Builder
	b.WriteString("TABLAS Y ESTRUCTURA DETECTADA AUTOMÁTICAMENTE:\n\n")

	parsed := make([]*gormschema.Schema, 0, len(s.models))
	cache := &sync.Map{}
	for _, m := range s.models {
		sch, err := gormschema.Parse(m, cache, s.namer)
		if err != nil {
			return "", fmt.Errorf("parse model schema: %w", err)
		}
		if ignoredTables[sch.Table] {
			continue
		}
		parsed = append(parsed, sch)
	}

	for i, sch := range parsed {
		cols := make([]string, 0, len(sch.Fields))
		softDelete := false
		for _, f := range sch.Fields {
			if f.DBName == "" || ignoredColumns[f.DBName] {
				continue
			}
			if f.DBName == "deleted_at" {
				softDelete = true
			}
			cols = append(cols, f.DBName)
		}
		line := fmt.Sprintf("%d. %s (%s)", i+1, sch.Table, strings.Join(cols, ", "))
		if softDelete {
			line += " [SOFT DELETE]"
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nRELACIONES:\n")
	for _, sch := range parsed {
		for _, rel := range sch.Relationships.HasMany {
			b.WriteString(fmt.Sprintf("- %s -> %s (relación 1:N)\n", sch.Table, rel.FieldSchema.Table))
		}
		for _, rel := range sch.Relationships.HasOne {
			b.WriteString(fmt.Sprintf("- %s -> %s (relación 1:1)\n", sch.Table, rel.FieldSchema.Table))
		}
	}

	return b.String(), nil
}
