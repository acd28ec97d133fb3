package csv

import (
	"strings"
	"testing"
)

type line []string

func (l line) Fields() []string { return l }

func TestCreate(t *testing.T) {
	records := []line{
		{"01", "CONSUMIDOR", "100,00"},
		{"02", "MARIA, FILHA", "49,90"},
	}

	out := string(Create([]string{"Filial", "Cliente", "Total"}, records, nil))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "Filial,Cliente,Total" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	// Cells carrying commas come out quoted.
	if lines[2] != `02,"MARIA, FILHA","49,90"` {
		t.Errorf("unexpected quoted row: %q", lines[2])
	}
}

func TestCreateFilter(t *testing.T) {
	records := []line{{"keep"}, {"drop"}}

	out := string(Create([]string{"col"}, records, func(l line) bool {
		return l[0] == "keep"
	}))
	if strings.Contains(out, "drop") {
		t.Errorf("filtered record leaked: %q", out)
	}
	if !strings.Contains(out, "keep") {
		t.Errorf("kept record missing: %q", out)
	}
}
