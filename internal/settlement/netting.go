package settlement

import "math"

// Debt is one raw record: Debtor owes Creditor Amount. Records for the same
// pair accumulate.
type Debt struct {
	Debtor   string
	Creditor string
	Amount   int64
}

// DebtMatrix holds aggregated raw debts: Owed(i, j) is the total i owes j.
type DebtMatrix struct {
	cells [][]int64
}

// NewDebtMatrix returns an empty n×n matrix.
func NewDebtMatrix(n int) *DebtMatrix {
	cells := make([][]int64, n)
	for i := range cells {
		cells[i] = make([]int64, n)
	}
	return &DebtMatrix{cells: cells}
}

// Size returns the matrix dimension.
func (m *DebtMatrix) Size() int {
	return len(m.cells)
}

// Add accumulates amount onto the (debtor, creditor) cell.
func (m *DebtMatrix) Add(debtor, creditor int, amount int64) {
	m.cells[debtor][creditor] += amount
}

// Owed returns the total debtor owes creditor.
func (m *DebtMatrix) Owed(debtor, creditor int) int64 {
	return m.cells[debtor][creditor]
}

// BuildMatrix resolves debt records against the registry and aggregates them.
// An unknown name, a non-positive amount, or debts whose sum exceeds
// math.MaxInt64 abort with an *InputError.
//
// Capping the sum bounds every matrix cell, every participant's in and out
// totals, and every balance the planner can reach, so planning never
// overflows.
//
// A record naming the same participant on both sides is accepted; it lands on
// the diagonal, which netting ignores.
func BuildMatrix(reg *Registry, debts []Debt) (*DebtMatrix, error) {
	m := NewDebtMatrix(reg.Len())
	var volume int64
	for i, d := range debts {
		if d.Amount <= 0 {
			return nil, inputErrorf("debt %d: amount must be positive, got %d", i+1, d.Amount)
		}
		debtor, ok := reg.Index(d.Debtor)
		if !ok {
			return nil, inputErrorf("debt %d: unknown debtor %q", i+1, d.Debtor)
		}
		creditor, ok := reg.Index(d.Creditor)
		if !ok {
			return nil, inputErrorf("debt %d: unknown creditor %q", i+1, d.Creditor)
		}
		if d.Amount > math.MaxInt64-volume {
			return nil, inputErrorf("debt %d: debts total more than %d", i+1, int64(math.MaxInt64))
		}
		volume += d.Amount
		m.Add(debtor, creditor, d.Amount)
	}
	return m, nil
}

// NetBalances writes each participant's net balance onto the registry:
// balance[i] = Σ_j owed(j, i) − Σ_j owed(i, j).
//
// Balances are assigned, not accumulated, so the registry reflects exactly
// the given matrix. The diagonal cancels out.
func NetBalances(reg *Registry, m *DebtMatrix) {
	n := reg.Len()
	for i := 0; i < n; i++ {
		var balance int64
		for j := 0; j < n; j++ {
			balance += m.Owed(j, i) - m.Owed(i, j)
		}
		reg.Participant(i).Balance = balance
	}
}
