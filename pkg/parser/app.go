package parser

import (
	"fmt"
	"strings"

	"github.com/drogcidade/apptrier/pkg/models"
)

// Payment methods that take part in the reconciliation. Cash and the
// remaining methods settle through a different process and are filtered out
// here, before the pool ever reaches the engine.
var allowedMethods = map[string]bool{
	"Pix":    true,
	"Cartão": true,
	"Cartao": true,
}

type appColumns struct {
	branch  int
	method  int
	value   int
	created int
}

func appHeader(header []string) (appColumns, error) {
	cols := appColumns{branch: -1, method: -1, value: -1, created: -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "filial":
			cols.branch = i
		case strings.Contains(h, "pagamento"):
			cols.method = i
		case strings.Contains(h, "criado"):
			cols.created = i
		case strings.Contains(h, "valor") && cols.value == -1:
			cols.value = i
		}
	}
	if cols.method == -1 || cols.value == -1 {
		return cols, fmt.Errorf("required columns not found in APP worksheet header %v", header)
	}
	return cols, nil
}

// ParseAppRows maps the APP worksheet (header row first) into the
// transaction pool. Rows with a disallowed payment method are dropped and
// rows with an unparseable amount are logged and skipped; an unparseable
// "Criado em" only clears CreatedAtOK, keeping the row eligible for
// value-only matching.
func (p *Parser) ParseAppRows(rows [][]string) ([]*models.Transaction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in APP worksheet")
	}

	cols, err := appHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var transactions []*models.Transaction
	for _, row := range rows[1:] {
		method := cell(row, cols.method)
		if !allowedMethods[method] {
			continue
		}

		amount, err := ParseBRL(cell(row, cols.value))
		if err != nil {
			p.logger.Debug("skipping APP row", "row", row, "error", err)
			continue
		}

		createdAt, ok := parseTimestamp(cell(row, cols.created))
		if !ok {
			p.logger.Debug("APP row without usable timestamp", "row", row)
		}

		transactions = append(transactions, &models.Transaction{
			Branch:      cell(row, cols.branch),
			Amount:      amount,
			Method:      method,
			CreatedAt:   createdAt,
			CreatedAtOK: ok,
		})
	}

	p.logger.Debug("parsed APP worksheet", "rows", len(rows)-1, "transactions", len(transactions))
	return transactions, nil
}

// cell returns the trimmed column value, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
