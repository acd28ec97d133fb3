package parser

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseTrierRows(t *testing.T) {
	parser := New(log.Default())

	rows := [][]string{
		{"Núm. Venda", "Filial", "Hora", "Documento Fiscal", "Cliente", "Valor Bruto", "% Desconto", "Valor Desconto", "Valor Líquido", "Total Líquido"},
		{"1001", "01", "10:30:00", "NFC-e 123", "CONSUMIDOR", "100,00", "0", "0,00", "100,00", "100,00"},
		{"1002", "01", "sem hora", "NFC-e 124", "MARIA", "49,90", "0", "0,00", "49,90", "49,90"},
		{"", "", "", "", "Total Filial: 01", "", "", "", "", "149,90"},
		{"1003", "02", "11:05:00", "NFC-e 125", "JOSÉ", "10,00", "0", "0,00", "10,00", "dez reais"},
		{"", "", "", "", "Total Geral:", "", "", "", "", "159,90"},
	}

	sales, err := parser.ParseTrierRows(rows)
	if err != nil {
		t.Fatalf("ParseTrierRows failed: %v", err)
	}

	// Subtotal lines and the unparseable total are gone.
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(sales))
	}

	first := sales[0]
	if first.Branch != "01" || first.SaleNumber != "1001" || first.Customer != "CONSUMIDOR" {
		t.Errorf("unexpected first sale: %+v", first)
	}
	if first.NetTotal.StringFixed(2) != "100.00" {
		t.Errorf("unexpected total: %s", first.NetTotal)
	}
	if !first.TimeOK || first.Time.Hour() != 10 || first.Time.Minute() != 30 {
		t.Errorf("unexpected clock: %+v", first)
	}

	if sales[1].TimeOK {
		t.Error("unparseable Hora must clear TimeOK")
	}
}

func TestParseTrierRowsMissingColumns(t *testing.T) {
	parser := New(log.Default())

	if _, err := parser.ParseTrierRows([][]string{{"Cliente", "Hora"}}); err == nil {
		t.Error("expected an error for a header without Filial/Total Líquido")
	}
	if _, err := parser.ParseTrierRows(nil); err == nil {
		t.Error("expected an error for an empty worksheet")
	}
}

func TestMapRawRows(t *testing.T) {
	parser := New(log.Default())

	// The raw export opens with preamble rows before the real header.
	rows := [][]string{
		{"Relação de Vendas"},
		{"Período: 11/08/2026 a 11/08/2026"},
		{""},
		{"Núm.\nVenda", "Filial", "Hora", "Documento Fiscal", "Cliente", "Valor Bruto", "% Desc.", "Valor Desconto", "Valor Líquido", "Total Líquido"},
		{"1001", "01", "10:30:00", "NFC-e 123", "CONSUMIDOR", "100,00", "0", "0,00", "100,00", "100,00"},
		{"", "", "", "", "", "", "", "", "", ""},
		{"", "", "", "", "Total Filial: 01", "", "", "", "", "100,00"},
		{"1002", "02", "11:05:00", "NFC-e 124", "MARIA", "49,90", "0", "0,00", "49,90", "49,90"},
		{"", "", "", "", "Total Geral:", "", "", "", "", "149,90"},
	}

	cleaned, err := parser.mapRawRows(rows)
	if err != nil {
		t.Fatalf("mapRawRows failed: %v", err)
	}
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 cleaned rows, got %d", len(cleaned))
	}

	first := cleaned[0]
	if first.SaleNumber != "1001" || first.Branch != "01" || first.Document != "NFC-e 123" {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.NetTotal != "100,00" {
		t.Errorf("cleanup must not reinterpret cells, got %q", first.NetTotal)
	}
}

func TestMapRawRowsHeaderNotFound(t *testing.T) {
	parser := New(log.Default())

	rows := [][]string{
		{"Relação de Vendas"},
		{"nada", "aqui"},
	}
	if _, err := parser.mapRawRows(rows); err == nil {
		t.Error("expected an error when the header never shows up")
	}
}

func TestTrierReportRowSummary(t *testing.T) {
	row := &TrierReportRow{
		SaleNumber: "1001",
		Branch:     "01",
		Time:       "10:30:00",
		Customer:   "CONSUMIDOR",
		NetTotal:   "1.234,56",
	}

	summary := row.Summary()
	if summary.Branch != "01" || summary.SaleNumber != "1001" {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.NetTotal.StringFixed(2) != "1234.56" {
		t.Errorf("unexpected total: %s", summary.NetTotal)
	}
	if !summary.TimeOK || summary.Time.Hour() != 10 {
		t.Errorf("unexpected clock: %+v", summary)
	}

	broken := &TrierReportRow{Branch: "01", Time: "??", NetTotal: "??"}
	got := broken.Summary()
	if !got.NetTotal.IsZero() || got.TimeOK {
		t.Errorf("broken cells should zero the total and clear TimeOK: %+v", got)
	}
}

func TestTrierSheetRows(t *testing.T) {
	rows := []*TrierReportRow{
		{SaleNumber: "1001", Branch: "01", Time: "10:30:00", NetTotal: "100,00"},
	}

	values := TrierSheetRows(rows)
	if len(values) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(values))
	}
	if values[0][0] != "Núm. Venda" || values[0][9] != "Total Líquido" {
		t.Errorf("unexpected header row: %v", values[0])
	}
	if values[1][0] != "1001" || values[1][9] != "100,00" {
		t.Errorf("unexpected data row: %v", values[1])
	}
}
