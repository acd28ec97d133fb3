package parser

import (
	"fmt"
	"strings"

	"github.com/drogcidade/apptrier/pkg/models"
)

type trierColumns struct {
	sale     int
	branch   int
	clock    int
	customer int
	total    int
}

func trierHeader(header []string) (trierColumns, error) {
	cols := trierColumns{sale: -1, branch: -1, clock: -1, customer: -1, total: -1}
	for i, h := range header {
		h = normalize(h)
		switch {
		case strings.Contains(h, "num") && strings.Contains(h, "venda"):
			cols.sale = i
		case h == "filial":
			cols.branch = i
		case h == "hora":
			cols.clock = i
		case h == "cliente":
			cols.customer = i
		case strings.Contains(h, "total") && strings.Contains(h, "liquido"):
			cols.total = i
		}
	}
	if cols.branch == -1 || cols.total == -1 {
		return cols, fmt.Errorf("required columns not found in Trier header %v", header)
	}
	return cols, nil
}

// normalize lowercases a header cell and strips the accents and line breaks
// the raw report sprinkles into its column names.
func normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "\n", " ")
	for _, r := range []struct{ from, to string }{
		{"í", "i"}, {"ú", "u"}, {"é", "e"}, {"á", "a"}, {"ã", "a"}, {"ç", "c"}, {".", ""},
	} {
		h = strings.ReplaceAll(h, r.from, r.to)
	}
	return h
}

// ParseTrierRows maps the cleaned APP_TRIER worksheet (header row first)
// into sale summaries. A row with an unparseable Hora keeps TimeOK false so
// the engine can resolve it as unmatched instead of dropping it silently.
func (p *Parser) ParseTrierRows(rows [][]string) ([]*models.SalesSummary, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in Trier worksheet")
	}

	cols, err := trierHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var sales []*models.SalesSummary
	for _, row := range rows[1:] {
		if isSubtotalRow(row) || cell(row, cols.branch) == "" {
			continue
		}

		total, err := ParseBRL(cell(row, cols.total))
		if err != nil {
			p.logger.Debug("skipping Trier row", "row", row, "error", err)
			continue
		}

		clock, ok := parseClock(cell(row, cols.clock))

		sales = append(sales, &models.SalesSummary{
			Branch:     cell(row, cols.branch),
			SaleNumber: cell(row, cols.sale),
			Customer:   cell(row, cols.customer),
			NetTotal:   total,
			Time:       clock,
			TimeOK:     ok,
		})
	}

	p.logger.Debug("parsed Trier worksheet", "rows", len(rows)-1, "sales", len(sales))
	return sales, nil
}

// The raw report closes every branch section with subtotal lines that must
// not become sales.
var subtotalMarkers = []string{"Total Filial:", "Total Geral:"}

func isSubtotalRow(row []string) bool {
	for _, c := range row {
		for _, marker := range subtotalMarkers {
			if strings.Contains(c, marker) {
				return true
			}
		}
	}
	return false
}
