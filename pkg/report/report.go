// Package report renders a reconciliation report for its two consumers: the
// APPXTRIER worksheet and CSV download/stdout.
package report

import (
	"strconv"

	"github.com/drogcidade/apptrier/pkg/csv"
	"github.com/drogcidade/apptrier/pkg/reconcile"
)

// Header matches the column layout of the APPXTRIER worksheet.
var Header = []string{
	"Filial", "Núm. Venda", "Cliente", "Criado em (APP)", "Hora (Trier)",
	"Pagamento", "Valor Venda APP", "Total Líquido (Trier)", "Diferença",
	"Dif. (min)", "Status",
}

// Line adapts one match result to the csv.Row interface.
type Line struct {
	reconcile.MatchResult
}

// Fields renders the line. Match-side cells stay empty on unmatched rows,
// as the spreadsheet readers expect.
func (l Line) Fields() []string {
	sale := l.Summary

	clock := ""
	if sale.TimeOK {
		clock = sale.Time.Format("15:04:05")
	}

	createdAt, method, amount, diff, minutes := "", "", "", "", ""
	if l.Matched != nil {
		if l.Matched.CreatedAtOK {
			createdAt = l.Matched.CreatedAt.Format("02/01/2006 15:04:05")
		}
		method = l.Matched.Method
		amount = l.Matched.Amount.StringFixed(2)
		diff = l.Diff.StringFixed(2)
		if l.TimeChecked {
			minutes = strconv.FormatFloat(l.MinutesApart, 'f', 1, 64)
		}
	}

	return []string{
		sale.Branch,
		sale.SaleNumber,
		sale.Customer,
		createdAt,
		clock,
		method,
		amount,
		sale.NetTotal.StringFixed(2),
		diff,
		minutes,
		string(l.Status),
	}
}

// Lines wraps every report entry for rendering, preserving report order.
func Lines(r *reconcile.Report) []Line {
	lines := make([]Line, len(r.Items))
	for i, item := range r.Items {
		lines[i] = Line{item}
	}
	return lines
}

// CSV renders the whole report as CSV bytes.
func CSV(r *reconcile.Report) []byte {
	return csv.Create(Header, Lines(r), nil)
}

// SheetRows renders the report as Sheets values, header first, one row per
// sale in input order.
func SheetRows(r *reconcile.Report) [][]interface{} {
	values := make([][]interface{}, 0, len(r.Items)+1)
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	values = append(values, header)
	for _, line := range Lines(r) {
		fields := line.Fields()
		row := make([]interface{}, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		values = append(values, row)
	}
	return values
}
