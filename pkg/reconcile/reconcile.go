package reconcile

// Package reconcile pairs APP payment events with Trier sale summaries. The
// two systems share no transaction ID, use different clocks and round
// differently, so sales are matched by approximate equality on amount and,
// optionally, time of day. The engine is pure and stateless: it consumes two
// already-parsed record slices and produces one report row per sale, which
// keeps it reusable by the CLI, the sheet pipeline and the HTTP server.

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/drogcidade/apptrier/pkg/models"
)

// Options carries the per-run matching tolerances. Tolerances are explicit
// arguments rather than package globals so runs can override them and tests
// can probe the boundaries.
type Options struct {
	// ValueTolerance is the maximum absolute difference, in currency units,
	// for an APP amount to match a Trier net total. Inclusive.
	ValueTolerance decimal.Decimal

	// TimeToleranceMinutes bounds the clock distance between the APP
	// "Criado em" timestamp and the Trier Hora. Only used when MatchByTime
	// is set. Inclusive.
	TimeToleranceMinutes int

	// MatchByTime enables the clock filter. The original sheet flow matched
	// on value alone; time matching needs both worksheets to carry a clock.
	MatchByTime bool
}

// DefaultOptions mirrors the tolerances used by the production spreadsheet:
// R$ 0.15 and five minutes.
func DefaultOptions() Options {
	return Options{
		ValueTolerance:       decimal.RequireFromString("0.15"),
		TimeToleranceMinutes: 5,
		MatchByTime:          true,
	}
}

// Validate rejects tolerances that would make every comparison fail. A bad
// tolerance is a configuration error and aborts the run before any matching.
func (o Options) Validate() error {
	if o.ValueTolerance.Sign() <= 0 {
		return fmt.Errorf("value tolerance must be positive, got %s", o.ValueTolerance)
	}
	if o.MatchByTime && o.TimeToleranceMinutes <= 0 {
		return fmt.Errorf("time tolerance must be positive, got %d minutes", o.TimeToleranceMinutes)
	}
	return nil
}

func (o Options) timeTolerance() time.Duration {
	return time.Duration(o.TimeToleranceMinutes) * time.Minute
}

// MatchResult links one Trier sale with the closest APP transaction, if any.
type MatchResult struct {
	Summary *models.SalesSummary
	Matched *models.Transaction // nil when Status == StatusUnmatched

	// Diff is APP minus Trier, signed. AbsDiff is its absolute value.
	Diff    decimal.Decimal
	AbsDiff decimal.Decimal

	// MinutesApart is the clock distance of the selected match; only
	// meaningful when TimeChecked is set.
	MinutesApart float64
	TimeChecked  bool

	// Acceptance per tolerance dimension.
	WithinValue bool
	WithinTime  bool

	Status Status
}

// Report is the outcome of one reconciliation pass: exactly one entry per
// Trier sale, in input order. No sale is ever dropped, however many
// per-record problems occurred.
type Report struct {
	Items []MatchResult

	exact     int
	adjusted  int
	unmatched int
}

// ExactCount returns how many sales matched to the cent.
func (r *Report) ExactCount() int { return r.exact }

// AdjustedCount returns how many sales matched within tolerance only.
func (r *Report) AdjustedCount() int { return r.adjusted }

// UnmatchedCount returns how many sales found no transaction.
func (r *Report) UnmatchedCount() int { return r.unmatched }

// MatchedCount returns how many sales found a transaction.
func (r *Report) MatchedCount() int { return len(r.Items) - r.unmatched }

// Build runs one full pass over the sales. Each sale resolves independently
// against the same read-only pool: matching one sale never removes the
// transaction from the pool, so a single payment can satisfy several sales.
func Build(summaries []*models.SalesSummary, pool []*models.Transaction, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Items: make([]MatchResult, 0, len(summaries))}
	for _, sale := range summaries {
		entry := resolve(sale, pool, opts)
		switch entry.Status {
		case StatusExact:
			report.exact++
		case StatusAdjusted:
			report.adjusted++
		case StatusUnmatched:
			report.unmatched++
		}
		report.Items = append(report.Items, entry)
	}
	return report, nil
}

// resolve matches a single sale in one pass: branch subset, value filter,
// optional clock filter, then best-candidate selection. An empty set at any
// stage short-circuits to an unmatched row; there is no looser fallback rule.
func resolve(sale *models.SalesSummary, pool []*models.Transaction, opts Options) MatchResult {
	timed := opts.MatchByTime
	if timed && !sale.TimeOK {
		// The sale's Hora was unparseable. Local recovery: this row comes
		// out unmatched and the run continues.
		return unmatched(sale)
	}

	cands := withinValue(byBranch(pool, sale.Branch), sale.NetTotal, opts.ValueTolerance)
	if len(cands) == 0 {
		return unmatched(sale)
	}
	if timed {
		cands = withinTime(cands, sale.Time, opts.timeTolerance())
		if len(cands) == 0 {
			return unmatched(sale)
		}
	}

	win := best(cands, timed)
	entry := MatchResult{
		Summary:     sale,
		Matched:     win.tx,
		Diff:        win.tx.Amount.Sub(sale.NetTotal),
		AbsDiff:     win.valueDiff,
		WithinValue: win.valueDiff.LessThanOrEqual(opts.ValueTolerance),
		TimeChecked: timed,
		Status:      classify(win.valueDiff, opts.ValueTolerance),
	}
	if timed {
		entry.MinutesApart = win.timeDiff.Minutes()
		entry.WithinTime = true
	}
	return entry
}

func unmatched(sale *models.SalesSummary) MatchResult {
	return MatchResult{Summary: sale, Status: StatusUnmatched}
}
