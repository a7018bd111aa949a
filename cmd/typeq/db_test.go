package main

import (
	"strings"
	"testing"
)

// --- Unit Tests (no DB) ---

func TestFormatTableBasic(t *testing.T) {
	t.Parallel()
	result := formatTable([]string{"id", "name", "active"}, [][]string{
		{"1", "Alice", "true"},
		{"2", "Bob", "false"},
	})
	for _, want := range []string{"| id | name  | active |", "| 1  | Alice | true   |", "+----+-------+--------+", "(2 rows)"} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q:\n%s", want, result)
		}
	}
}

func TestFormatTableSingleRow(t *testing.T) {
	t.Parallel()
	if result := formatTable([]string{"x"}, [][]string{{"42"}}); !strings.Contains(result, "(1 row)") {
		t.Errorf("expected '(1 row)', got:\n%s", result)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	t.Parallel()
	result := formatTable([]string{"a", "b"}, nil)
	if !strings.Contains(result, "(0 rows)") {
		t.Errorf("expected '(0 rows)', got:\n%s", result)
	}
	if !strings.Contains(result, "| a | b |") {
		t.Errorf("missing header:\n%s", result)
	}
}

func TestFormatTableNoColumns(t *testing.T) {
	t.Parallel()
	if result := formatTable(nil, nil); result != "(0 rows)\n" {
		t.Errorf("expected '(0 rows)\\n', got: %q", result)
	}
}

func TestSanitizeDSN(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres url", "postgres://app:secret@db:5432/books?sslmode=disable", "postgres://app:****@db:5432/books?sslmode=disable"},
		{"url without password", "postgres://app@db/books", "postgres://app@db/books"},
		{"mysql", "app:secret@tcp(db:3306)/books", "app:****@tcp(db:3306)/books"},
		{"mysql password with at", "app:p@ss@tcp(db)/books", "app:****@tcp(db)/books"},
		{"sqlite", "file:books.db?cache=shared", "file:books.db?cache=shared"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeDSN(tc.dsn); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
