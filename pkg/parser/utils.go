package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseBRL converts a Brazilian currency cell into a decimal. It accepts the
// sheet's display form ("R$ 1.234,56"), the bare locale form ("1.234,56")
// and already-numeric text ("1234.56"). An empty cell is zero, matching how
// the spreadsheet treats blanks.
func ParseBRL(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		// Locale form: dots are thousand separators, comma is the decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency value %q: %w", raw, err)
	}
	return d, nil
}

var clockFormats = []string{
	"15:04:05",
	"15:04",
}

// parseClock parses a time-of-day cell such as the Trier Hora column.
func parseClock(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, format := range clockFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var timestampFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses the APP "Criado em" column. The false return flags
// the transaction as having no usable clock rather than failing the row:
// such transactions simply never survive time-based filtering.
func parseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	// Some exports carry only the clock.
	return parseClock(s)
}
