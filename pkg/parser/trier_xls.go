package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"

	"github.com/drogcidade/apptrier/pkg/models"
)

// TrierReportHeader is the cleaned column set uploaded to the APP_TRIER
// worksheet, in upload order.
var TrierReportHeader = []string{
	"Núm. Venda", "Filial", "Hora", "Documento Fiscal", "Cliente",
	"Valor Bruto", "% Desconto", "Valor Desconto", "Valor Líquido",
	"Total Líquido",
}

// TrierReportRow is one cleaned sale row from the raw "Relação de Vendas"
// export. Cells stay as strings: the cleanup step reshapes the report, it
// does not interpret it.
type TrierReportRow struct {
	SaleNumber    string
	Branch        string
	Time          string
	Document      string
	Customer      string
	GrossValue    string
	DiscountPct   string
	DiscountValue string
	NetValue      string
	NetTotal      string
}

func (r *TrierReportRow) cells() []interface{} {
	return []interface{}{
		r.SaleNumber, r.Branch, r.Time, r.Document, r.Customer,
		r.GrossValue, r.DiscountPct, r.DiscountValue, r.NetValue, r.NetTotal,
	}
}

// Summary converts the cleaned row into the typed record the engine wants.
func (r *TrierReportRow) Summary() *models.SalesSummary {
	total, err := ParseBRL(r.NetTotal)
	if err != nil {
		total = decimal.Zero
	}
	clock, ok := parseClock(r.Time)
	return &models.SalesSummary{
		Branch:     r.Branch,
		SaleNumber: r.SaleNumber,
		Customer:   r.Customer,
		NetTotal:   total,
		Time:       clock,
		TimeOK:     ok,
	}
}

// rawColumns locates the useful columns inside the raw report header, which
// buries them between unnamed spacer cells.
type rawColumns struct {
	trierColumns
	document      int
	gross         int
	discountPct   int
	discountValue int
	net           int
}

func rawHeader(header []string) (rawColumns, bool) {
	cols := rawColumns{
		trierColumns: trierColumns{sale: -1, branch: -1, clock: -1, customer: -1, total: -1},
		document:     -1, gross: -1, discountPct: -1, discountValue: -1, net: -1,
	}
	for i, h := range header {
		h = normalize(h)
		switch {
		case strings.Contains(h, "num") && strings.Contains(h, "venda"):
			cols.sale = i
		case h == "filial":
			cols.branch = i
		case h == "hora":
			cols.clock = i
		case strings.Contains(h, "documento") || h == "ecf":
			cols.document = i
		case h == "cliente":
			cols.customer = i
		case strings.Contains(h, "bruto"):
			cols.gross = i
		case strings.Contains(h, "%") && strings.Contains(h, "desc"):
			cols.discountPct = i
		case strings.Contains(h, "desconto"):
			cols.discountValue = i
		case strings.Contains(h, "total") && strings.Contains(h, "liquido"):
			cols.total = i
		case strings.Contains(h, "liquido"):
			cols.net = i
		}
	}
	return cols, cols.branch != -1 && cols.total != -1
}

// ParseRelacaoVendas reads the raw "Relação de Vendas" .xls export and
// returns the cleaned rows. The export opens with roughly ten preamble rows
// before the header and closes each branch section with subtotal lines;
// both are dropped here, mirroring the cleanup the spreadsheet flow used to
// do by hand.
func (p *Parser) ParseRelacaoVendas(data []byte) ([]*TrierReportRow, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}

	rows := workbook.ReadAllCells(5000)
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}

	return p.mapRawRows(rows)
}

// mapRawRows does the actual reshaping on already-extracted cells, split out
// from ParseRelacaoVendas so it can be exercised without a binary fixture.
func (p *Parser) mapRawRows(rows [][]string) ([]*TrierReportRow, error) {
	var cols rawColumns
	var found bool
	var out []*TrierReportRow

	for _, row := range rows {
		if !found {
			cols, found = rawHeader(row)
			continue
		}
		if isSubtotalRow(row) {
			continue
		}
		if cell(row, cols.branch) == "" && cell(row, cols.sale) == "" {
			continue
		}

		out = append(out, &TrierReportRow{
			SaleNumber:    cell(row, cols.sale),
			Branch:        cell(row, cols.branch),
			Time:          cell(row, cols.clock),
			Document:      cell(row, cols.document),
			Customer:      cell(row, cols.customer),
			GrossValue:    cell(row, cols.gross),
			DiscountPct:   cell(row, cols.discountPct),
			DiscountValue: cell(row, cols.discountValue),
			NetValue:      cell(row, cols.net),
			NetTotal:      cell(row, cols.total),
		})
	}

	if !found {
		return nil, fmt.Errorf("report header not found")
	}

	p.logger.Debug("parsed Relação de Vendas", "rows", len(rows), "sales", len(out))
	return out, nil
}

// TrierSheetRows renders cleaned rows as Sheets values, header first.
func TrierSheetRows(rows []*TrierReportRow) [][]interface{} {
	values := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(TrierReportHeader))
	for i, h := range TrierReportHeader {
		header[i] = h
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, r.cells())
	}
	return values
}
