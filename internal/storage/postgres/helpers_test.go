package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestEscapeILIKEPattern(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "normal text", input: "Lovelace", expected: "Lovelace"},
		{name: "percent sign", input: "100% effort", expected: `100\% effort`},
		{name: "underscore", input: "ada_l", expected: `ada\_l`},
		{name: "backslash", input: `test\path`, expected: `test\\path`},
		{name: "SQL injection attempt", input: `%'; DROP TABLE users; --`, expected: `\%'; DROP TABLE users; --`},
		{name: "mixed escape characters", input: `\%_test`, expected: `\\\%\_test`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeILIKEPattern(tt.input)
			if got != tt.expected {
				t.Errorf("escapeILIKEPattern(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("boom")))
}

func TestStringConversions(t *testing.T) {
	categories := []events.Category{events.CategoryAIML, events.CategoryIoT}

	raw := stringsOf(categories)

	require.Equal(t, []string{"ai-ml", "iot"}, raw)
	require.Equal(t, categories, typedOf[events.Category](raw))
}
