package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/drogcidade/apptrier/pkg/models"
)

// candidate is a transaction still eligible for a given sale, annotated with
// the differences computed by the filters that let it through.
type candidate struct {
	tx        *models.Transaction
	valueDiff decimal.Decimal // absolute
	timeDiff  time.Duration   // absolute, set only when the clock filter ran
}

// byBranch narrows the pool to the sale's branch, keeping input order.
// An empty result means "no match", never an error.
func byBranch(pool []*models.Transaction, branch string) []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range pool {
		if tx.Branch == branch {
			out = append(out, tx)
		}
	}
	return out
}

// withinValue keeps the transactions whose amount is within tolerance of the
// sale's net total. The bound is inclusive: a difference of exactly the
// tolerance still matches.
func withinValue(pool []*models.Transaction, target, tolerance decimal.Decimal) []candidate {
	out := make([]candidate, 0, len(pool))
	for _, tx := range pool {
		diff := tx.Amount.Sub(target).Abs()
		if diff.LessThanOrEqual(tolerance) {
			out = append(out, candidate{tx: tx, valueDiff: diff})
		}
	}
	return out
}

// withinTime keeps the candidates whose clock is within tolerance of the
// sale's clock, inclusive. A transaction whose timestamp failed to parse is
// effectively infinitely distant and never survives.
func withinTime(cands []candidate, target time.Time, tolerance time.Duration) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if !c.tx.CreatedAtOK {
			continue
		}
		c.timeDiff = clockDistance(c.tx.CreatedAt, target)
		if c.timeDiff <= tolerance {
			out = append(out, c)
		}
	}
	return out
}

// clockDistance is the absolute distance between the time of day of a and b.
// Dates are ignored: the Trier report carries only an Hora column and both
// sides are assumed to belong to the same business day.
func clockDistance(a, b time.Time) time.Duration {
	d := sinceMidnight(a) - sinceMidnight(b)
	if d < 0 {
		d = -d
	}
	return d
}

func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// best picks the winning candidate from a non-empty set. When the clock
// filter ran, the smallest time difference wins and the value difference
// breaks ties; otherwise the smallest value difference wins. Any remaining
// tie resolves to the earliest input position, so the result is
// deterministic for identical inputs.
func best(cands []candidate, timed bool) candidate {
	winner := cands[0]
	for _, c := range cands[1:] {
		if timed {
			if c.timeDiff < winner.timeDiff ||
				(c.timeDiff == winner.timeDiff && c.valueDiff.LessThan(winner.valueDiff)) {
				winner = c
			}
			continue
		}
		if c.valueDiff.LessThan(winner.valueDiff) {
			winner = c
		}
	}
	return winner
}
