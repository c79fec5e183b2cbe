package executor

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestExecutor(t *testing.T) (*Executor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	return NewExecutor(gormDB, nopLogger{}), mock
}

func TestExecuteMapsRows(t *testing.T) {
	exec, mock := newTestExecutor(t)

	mock.ExpectQuery(`SELECT \* FROM orders LIMIT 100`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "total"}).
			AddRow(int64(1), []byte("Juan"), 99.5).
			AddRow(int64(2), []byte("Ana"), 10.0))

	result, err := exec.Execute(context.Background(), "SELECT * FROM orders LIMIT 100")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Columns) != 3 || result.Columns[0] != "id" {
		t.Errorf("Columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if result.Rows[0]["customer"] != "Juan" {
		t.Errorf("byte column should be converted to string, got %T %v",
			result.Rows[0]["customer"], result.Rows[0]["customer"])
	}
	if result.Rows[1]["total"] != 10.0 {
		t.Errorf("total = %v", result.Rows[1]["total"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExecuteEmptyResult(t *testing.T) {
	exec, mock := newTestExecutor(t)

	mock.ExpectQuery(`SELECT \* FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := exec.Execute(context.Background(), "SELECT * FROM orders LIMIT 100")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Rows == nil {
		t.Fatal("Rows should be an empty slice, not nil")
	}
	if len(result.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(result.Rows))
	}
}

func TestExecuteSanitizesDriverError(t *testing.T) {
	exec, mock := newTestExecutor(t)

	mock.ExpectQuery(`SELECT boom`).
		WillReturnError(errors.New(`pq: relation "secret_table" does not exist`))

	_, err := exec.Execute(context.Background(), "SELECT boom LIMIT 100")
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want AppError", err)
	}
	if appErr.Kind != apperrors.KindExecutionFailed {
		t.Errorf("Kind = %q, want execution_failed", appErr.Kind)
	}
	if appErr.Message == "" || appErr.Message == appErr.Err.Error() {
		t.Errorf("user message should be sanitized, got %q", appErr.Message)
	}
}
