// Package allocator distributes an integer cent amount across a weighted
// tree of causes and organizations with zero rounding leakage. It is pure:
// no storage, no clock, no configuration.
package allocator

import "errors"

// Denominator is the fixed base proportions are expressed in: a proportion
// of 2500 means 25% of the parent.
const Denominator = 10000

var (
	ErrNonPositiveAmount  = errors.New("allocation amount must be positive")
	ErrNoTargets          = errors.New("no allocation targets with a positive proportion")
	ErrNegativeProportion = errors.New("proportions must not be negative")
	ErrInvalidResize      = errors.New("resize totals must be positive")
)

// OrgShare is an organization's proportion of its cause.
type OrgShare struct {
	Key        string
	Proportion int64
}

// CauseShare is a cause's proportion of the whole donation, together with
// its member organizations.
type CauseShare struct {
	Proportion int64
	Orgs       []OrgShare
}

// Split is one organization's allocated amount in minor units.
type Split struct {
	OrganizationKey string
	Amount          int64
}

// Allocate splits total (minor units) across the tree. Each leaf gets
// round(total * causeProportion * orgProportion / Denominator²), rounding
// half away from zero; the residual cents are then repaid one at a time
// walking from the last leaf backward, wrapping, so the remainder never
// piles onto the first (primary) target. Leaves whose effective proportion
// is zero produce no split at all. The returned amounts always sum to
// exactly total.
func Allocate(total int64, causes []CauseShare) ([]Split, error) {
	if total <= 0 {
		return nil, ErrNonPositiveAmount
	}

	var splits []Split
	for _, cause := range causes {
		if cause.Proportion < 0 {
			return nil, ErrNegativeProportion
		}
		for _, org := range cause.Orgs {
			if org.Proportion < 0 {
				return nil, ErrNegativeProportion
			}
			weight := cause.Proportion * org.Proportion
			if weight == 0 {
				continue // zero proportion ⇒ no split record
			}
			splits = append(splits, Split{
				OrganizationKey: org.Key,
				Amount:          divRound(total*weight, Denominator*Denominator),
			})
		}
	}
	if len(splits) == 0 {
		return nil, ErrNoTargets
	}
	if len(splits) == 1 {
		splits[0].Amount = total
		return splits, nil
	}

	correct(splits, total)
	return splits, nil
}

// Resize re-expresses an existing split set for a new total, scaling every
// amount by newTotal/oldTotal with the same round-then-correct procedure.
// The result sums to round(sum(splits) * newTotal / oldTotal); when the
// input sums to oldTotal (the usual case) that is exactly newTotal.
func Resize(splits []Split, newTotal, oldTotal int64) ([]Split, error) {
	if newTotal <= 0 || oldTotal <= 0 {
		return nil, ErrInvalidResize
	}
	if len(splits) == 0 {
		return nil, ErrNoTargets
	}

	var sum int64
	resized := make([]Split, len(splits))
	for i, s := range splits {
		if s.Amount < 0 {
			return nil, ErrNegativeProportion
		}
		sum += s.Amount
		resized[i] = Split{
			OrganizationKey: s.OrganizationKey,
			Amount:          divRound(s.Amount*newTotal, oldTotal),
		}
	}

	correct(resized, divRound(sum*newTotal, oldTotal))
	return resized, nil
}

// divRound divides rounding half away from zero. Both operands are
// non-negative in this package, so this is plain half-up.
func divRound(num, den int64) int64 {
	return (2*num + den) / (2 * den)
}

// correct repays the rounding discrepancy ±1 minor unit at a time onto the
// splits, last first, wrapping when the discrepancy exceeds the leaf count.
// A decrement never drives a split negative; such leaves are skipped.
func correct(splits []Split, target int64) {
	var sum int64
	for _, s := range splits {
		sum += s.Amount
	}

	step := int64(1)
	if sum > target {
		step = -1
	}
	for i := len(splits) - 1; sum != target; i-- {
		if i < 0 {
			i = len(splits) - 1
		}
		if step < 0 && splits[i].Amount == 0 {
			continue
		}
		splits[i].Amount += step
		sum += step
	}
}
