package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/cashflow/internal/settlement"
)

// ErrAmountOverflow reports debts whose total does not fit in an int64.
var ErrAmountOverflow = errors.New("debts total more than the largest supported amount")

// MemberBalance summarizes one roster member's position.
type MemberBalance struct {
	Name       string
	NetBalance int64 // Positive = owed money, Negative = owes money
	TotalOwed  int64 // Total other members owe this member
	TotalOwes  int64 // Total this member owes others
}

// GroupBalances aggregates raw debts into per-member totals, in roster order.
//
// Unlike settlement.NetBalances it needs no channel information, so it can
// report on a roster that is not yet ready for planning. Self-debts are
// ignored, matching the netting engine.
func GroupBalances(members []string, debts []settlement.Debt) ([]MemberBalance, error) {
	balances := make([]MemberBalance, len(members))
	index := make(map[string]int, len(members))
	for i, name := range members {
		balances[i].Name = name
		index[name] = i
	}

	var volume int64
	for _, d := range debts {
		if d.Amount > math.MaxInt64-volume {
			return nil, ErrAmountOverflow
		}
		volume += d.Amount
		debtor, ok := index[d.Debtor]
		if !ok {
			return nil, fmt.Errorf("unknown debtor %q", d.Debtor)
		}
		creditor, ok := index[d.Creditor]
		if !ok {
			return nil, fmt.Errorf("unknown creditor %q", d.Creditor)
		}
		if debtor == creditor {
			continue
		}
		balances[debtor].TotalOwes += d.Amount
		balances[creditor].TotalOwed += d.Amount
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalOwed - balances[i].TotalOwes
	}
	return balances, nil
}
