package safety

import (
	"errors"
	"testing"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		want    string
		wantErr bool
	}{
		{
			name: "plain select gets limit",
			sql:  "SELECT * FROM orders",
			want: "SELECT * FROM orders LIMIT 100",
		},
		{
			name: "existing limit kept",
			sql:  "SELECT * FROM orders LIMIT 5",
			want: "SELECT * FROM orders LIMIT 5",
		},
		{
			name: "trailing semicolon removed before limit",
			sql:  "SELECT * FROM orders;",
			want: "SELECT * FROM orders LIMIT 100",
		},
		{
			name: "trailing semicolon removed even with limit present",
			sql:  "SELECT * FROM orders LIMIT 5;",
			want: "SELECT * FROM orders LIMIT 5",
		},
		{
			name: "deleted_at column does not trip keyword check",
			sql:  "SELECT * FROM users WHERE deleted_at IS NULL",
			want: "SELECT * FROM users WHERE deleted_at IS NULL LIMIT 100",
		},
		{
			name: "created_at column is not the create keyword",
			sql:  "SELECT created_at FROM orders",
			want: "SELECT created_at FROM orders LIMIT 100",
		},
		{
			name:    "non select rejected",
			sql:     "SHOW TABLES",
			wantErr: true,
		},
		{
			name:    "update rejected",
			sql:     "UPDATE users SET role = 'admin'",
			wantErr: true,
		},
		{
			name:    "embedded drop rejected",
			sql:     "SELECT 1; DROP TABLE users",
			wantErr: true,
		},
		{
			name:    "delete keyword rejected case insensitive",
			sql:     "select * from users where id in (DELETE from users)",
			wantErr: true,
		},
		{
			name:    "empty rejected",
			sql:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAndNormalize(tt.sql)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateAndNormalize(%q) = %q, want error", tt.sql, got)
				}
				var appErr *apperrors.AppError
				if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindSqlRejected {
					t.Fatalf("error = %v, want KindSqlRejected", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndNormalize(%q) error = %v", tt.sql, err)
			}
			if got != tt.want {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}
