package prompt

import (
	"strings"
	"testing"
)

func TestGenerationPrompt(t *testing.T) {
	c := NewComposer("tienda", "Los pedidos 'pending' son pedidos sin pagar.")

	got := c.Generation("muéstrame los pedidos", "TABLAS:\n1. orders (id)\n", "CONTEXTO CONVERSACIONAL:\nUsuario: \"hola\"\n\n")

	for _, want := range []string{
		"BASE DE DATOS: tienda",
		"1. orders (id)",
		"CONTEXTO CONVERSACIONAL:",
		"SOLO genera queries SELECT",
		"LIMIT 100",
		"[SOFT DELETE]",
		"ILIKE",
		"CASO A",
		"CASO B",
		"\"text_answer\"",
		"suggested_questions",
		"Los pedidos 'pending' son pedidos sin pagar.",
		"Pregunta del usuario: muéstrame los pedidos",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generation prompt missing %q", want)
		}
	}
}

func TestGenerationPromptOmitsEmptySections(t *testing.T) {
	c := NewComposer("tienda", "")

	got := c.Generation("hola", "TABLAS:\n", "")

	if strings.Contains(got, "REGLAS DE NEGOCIO PROPIAS DEL PROYECTO") {
		t.Error("additional rules section should be omitted when empty")
	}
}

func TestNarrationPrompt(t *testing.T) {
	c := NewComposer("tienda", "")

	rows := []map[string]any{{"id": 1, "total": 99.5}}
	got, err := c.Narration("¿cuántos pedidos hay?", "SELECT * FROM orders LIMIT 100", rows)
	if err != nil {
		t.Fatalf("Narration() error = %v", err)
	}

	for _, want := range []string{
		"¿cuántos pedidos hay?",
		"SELECT * FROM orders LIMIT 100",
		`"total":99.5`,
		"prompt injection",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("narration prompt missing %q", want)
		}
	}
}
