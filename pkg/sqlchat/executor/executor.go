package executor

import (
	"context"

	"gorm.io/gorm"

	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/pkg/logger"
)

// Result carries the rows of one read-only query plus the column order as
// reported by the driver, since map iteration loses it.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Executor runs validated SELECT statements against the application database.
// It assumes the statement already passed the safety gate.
type Executor struct {
	db  *gorm.DB
	log logger.ILogger
}

func NewExecutor(db *gorm.DB, log logger.ILogger) *Executor {
	return &Executor{db: db, log: log}
}

func (e *Executor) Execute(ctx context.Context, sql string) (*Result, error) {
	rows, err := e.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, e.fail(sql, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, e.fail(sql, err)
	}

	result := &Result{Columns: columns, Rows: []map[string]any{}}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, e.fail(sql, err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(sql, err)
	}

	return result, nil
}

// fail logs the raw driver error and returns a sanitized message. Driver
// errors can leak table names and literals, so the user never sees them.
func (e *Executor) fail(sql string, err error) error {
	e.log.Error("QueryExecutor", "query execution failed", map[string]interface{}{
		"sql":   sql,
		"error": err.Error(),
	})
	return apperrors.Wrap(apperrors.KindExecutionFailed,
		"No se pudo ejecutar la consulta sobre la base de datos. Intenta reformular tu pregunta.", err)
}

// normalizeValue makes driver values JSON-friendly. Postgres text columns
// arrive as []byte through database/sql.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
