package safety

import (
	"errors"
	"testing"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

func TestCheckQuestion(t *testing.T) {
	rejected := []string{
		"delete all users",
		"DROP TABLE orders",
		"please truncate the logs",
		"elimina la tabla de usuarios",
		"borra los registros de hoy",
		"actualiza los datos del cliente",
	}
	for _, q := range rejected {
		t.Run("rejects "+q, func(t *testing.T) {
			err := CheckQuestion(q)
			if err == nil {
				t.Fatalf("CheckQuestion(%q) = nil, want error", q)
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInputRejected {
				t.Fatalf("error = %v, want KindInputRejected", err)
			}
		})
	}

	accepted := []string{
		"show me all users",
		"muéstrame los pedidos de esta semana",
		"¿cuántos productos eliminados hay?",
		"¿qué registros se crearon ayer?",
		"top 10 clientes por ventas",
	}
	for _, q := range accepted {
		t.Run("accepts "+q, func(t *testing.T) {
			if err := CheckQuestion(q); err != nil {
				t.Fatalf("CheckQuestion(%q) = %v, want nil", q, err)
			}
		})
	}
}
