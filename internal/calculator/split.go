package calculator

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/mmynk/cashflow/internal/settlement"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNoParticipants    = errors.New("must have at least one participant")
	ErrMissingPayer      = errors.New("payer is required")
	ErrWeightOverflow    = errors.New("weights sum past the largest supported value")
)

// Expense is a shared cost paid by one person on behalf of participants.
// Amounts are integer minor units (paise, cents).
type Expense struct {
	Description  string
	Payer        string
	Amount       int64
	Participants []string

	// Weights optionally skews the split. A participant without an entry
	// weighs 1. A nil map splits equally.
	Weights map[string]int64
}

// SplitExpense computes each participant's share and the debts they owe the
// payer. Integer division leftovers are spread over the weighted participants
// in participant order, so shares always sum to the amount. The payer's own
// share produces no debt.
func SplitExpense(e Expense) (map[string]int64, []settlement.Debt, error) {
	if e.Payer == "" {
		return nil, nil, ErrMissingPayer
	}
	if e.Amount <= 0 {
		return nil, nil, ErrNonPositiveAmount
	}
	if len(e.Participants) == 0 {
		return nil, nil, ErrNoParticipants
	}

	weights := make([]int64, len(e.Participants))
	seen := make(map[string]bool, len(e.Participants))
	var totalWeight int64
	for i, p := range e.Participants {
		if seen[p] {
			return nil, nil, fmt.Errorf("duplicate participant %q", p)
		}
		seen[p] = true

		w := int64(1)
		if e.Weights != nil {
			if v, ok := e.Weights[p]; ok {
				w = v
			}
		}
		if w < 0 {
			return nil, nil, fmt.Errorf("weight for %q cannot be negative", p)
		}
		if w > math.MaxInt64-totalWeight {
			return nil, nil, ErrWeightOverflow
		}
		weights[i] = w
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil, nil, fmt.Errorf("weights sum to zero")
	}

	shares := make(map[string]int64, len(e.Participants))
	var assigned int64
	eligible := 0
	for i, p := range e.Participants {
		share := weightedShare(e.Amount, weights[i], totalWeight)
		shares[p] = share
		assigned += share
		if weights[i] > 0 {
			eligible++
		}
	}

	// Each floor loses less than one unit, so extra units go to the first
	// weighted participants.
	remainder := e.Amount - assigned
	each, extra := remainder/int64(eligible), remainder%int64(eligible)
	for i, p := range e.Participants {
		if weights[i] == 0 {
			continue
		}
		shares[p] += each
		if extra > 0 {
			shares[p]++
			extra--
		}
	}

	var debts []settlement.Debt
	for _, p := range e.Participants {
		if p == e.Payer || shares[p] == 0 {
			continue
		}
		debts = append(debts, settlement.Debt{
			Debtor:   p,
			Creditor: e.Payer,
			Amount:   shares[p],
		})
	}
	return shares, debts, nil
}

// weightedShare returns floor(amount*weight/total) using a 128-bit product.
// weight never exceeds total, so the quotient fits in amount's range.
func weightedShare(amount, weight, total int64) int64 {
	hi, lo := bits.Mul64(uint64(amount), uint64(weight))
	q, _ := bits.Div64(hi, lo, uint64(total))
	return int64(q)
}
