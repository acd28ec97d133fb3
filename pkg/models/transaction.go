package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one payment event exported from the APP worksheet.
// Cash sales never reach the pool; the parser keeps only the allow-listed
// card and Pix payments.
type Transaction struct {
	Branch      string
	Amount      decimal.Decimal
	Method      string
	CreatedAt   time.Time
	CreatedAtOK bool
}

// SalesSummary is one sale row from the Trier "Relação de Vendas" report.
// The report carries only the time of day, not a full timestamp; TimeOK is
// false when the Hora cell could not be parsed.
type SalesSummary struct {
	Branch     string
	SaleNumber string
	Customer   string
	NetTotal   decimal.Decimal
	Time       time.Time
	TimeOK     bool
}
