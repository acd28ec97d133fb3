package reconcile

import "github.com/shopspring/decimal"

// Status labels the outcome of matching a single Trier sale. The labels are
// the exact strings written to the APPXTRIER worksheet.
//
//   - StatusExact:     the APP amount equals the Trier net total.
//   - StatusAdjusted:  the amounts differ but stay within tolerance.
//   - StatusDivergent: the difference exceeds tolerance. Unreachable while
//     candidates are tolerance-filtered before selection; kept as a guard.
//   - StatusUnmatched: no transaction survived filtering.
type Status string

const (
	StatusExact     Status = "OK"
	StatusAdjusted  Status = "OK (AJUSTE)"
	StatusDivergent Status = "VALOR DIVERGENTE"
	StatusUnmatched Status = "SEM CORRESPONDÊNCIA"
)

// classify maps the absolute value difference of a selected match to a
// status. It depends on the value dimension only; time never changes the
// label of a selected match.
func classify(absDiff, tolerance decimal.Decimal) Status {
	switch {
	case absDiff.IsZero():
		return StatusExact
	case absDiff.LessThanOrEqual(tolerance):
		return StatusAdjusted
	default:
		return StatusDivergent
	}
}
