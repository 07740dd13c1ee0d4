package settlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeWayRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Entry{
		{Name: "T", Channels: []string{"A"}},
		{Name: "P1", Channels: []string{"A", "B"}},
		{Name: "P2", Channels: []string{"B"}},
	})
	require.NoError(t, err)
	return reg
}

func TestBuildMatrix(t *testing.T) {
	reg := threeWayRegistry(t)

	m, err := BuildMatrix(reg, []Debt{
		{Debtor: "P2", Creditor: "P1", Amount: 10},
		{Debtor: "P2", Creditor: "P1", Amount: 5},
		{Debtor: "P1", Creditor: "T", Amount: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), m.Owed(2, 1))
	assert.Equal(t, int64(3), m.Owed(1, 0))
	assert.Equal(t, int64(0), m.Owed(1, 2))
}

func TestBuildMatrix_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		debt    Debt
		wantErr string
	}{
		{"zero amount", Debt{Debtor: "P1", Creditor: "P2", Amount: 0}, "amount must be positive"},
		{"negative amount", Debt{Debtor: "P1", Creditor: "P2", Amount: -4}, "amount must be positive"},
		{"unknown debtor", Debt{Debtor: "X", Creditor: "P2", Amount: 4}, `unknown debtor "X"`},
		{"unknown creditor", Debt{Debtor: "P1", Creditor: "Y", Amount: 4}, `unknown creditor "Y"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMatrix(threeWayRegistry(t), []Debt{tt.debt})
			var inErr *InputError
			require.ErrorAs(t, err, &inErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildMatrix_RejectsOverflowingTotals(t *testing.T) {
	entries := []Entry{
		{Name: "T", Channels: []string{"A"}},
		{Name: "A", Channels: []string{"A"}},
		{Name: "B", Channels: []string{"A"}},
		{Name: "C", Channels: []string{"A"}},
	}
	tests := []struct {
		name  string
		debts []Debt
	}{
		{
			name: "one debtor owing two creditors",
			debts: []Debt{
				{Debtor: "A", Creditor: "B", Amount: math.MaxInt64},
				{Debtor: "A", Creditor: "C", Amount: math.MaxInt64},
			},
		},
		{
			name: "same pair accumulating",
			debts: []Debt{
				{Debtor: "A", Creditor: "B", Amount: math.MaxInt64},
				{Debtor: "A", Creditor: "B", Amount: 1},
			},
		},
		{
			name: "one creditor owed by two debtors",
			debts: []Debt{
				{Debtor: "A", Creditor: "C", Amount: math.MaxInt64 - 1},
				{Debtor: "B", Creditor: "C", Amount: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Settle(entries, tt.debts)
			var inErr *InputError
			require.ErrorAs(t, err, &inErr)
			assert.Contains(t, err.Error(), "debt 2: debts total more than")
		})
	}
}

func TestSettle_LargestRepresentableDebt(t *testing.T) {
	reg, plan, err := Settle([]Entry{
		{Name: "T", Channels: []string{"A"}},
		{Name: "P1", Channels: []string{"B"}},
		{Name: "P2", Channels: []string{"C"}},
	}, []Debt{{Debtor: "P1", Creditor: "P2", Amount: math.MaxInt64}})
	require.NoError(t, err)

	assert.True(t, reg.Settled())
	assert.Equal(t, 1, plan.TreasurerHops())
	assert.Equal(t, int64(math.MaxInt64), plan.Total())
	for _, tr := range plan.Transfers() {
		assert.Equal(t, int64(math.MaxInt64), tr.Amount)
	}
}

func TestNetBalances(t *testing.T) {
	reg := threeWayRegistry(t)
	m, err := BuildMatrix(reg, []Debt{
		{Debtor: "P2", Creditor: "P1", Amount: 10},
		{Debtor: "P1", Creditor: "T", Amount: 4},
		{Debtor: "T", Creditor: "P2", Amount: 1},
	})
	require.NoError(t, err)

	NetBalances(reg, m)
	assert.Equal(t, []int64{3, 6, -9}, reg.Balances())
	assert.Zero(t, reg.Total())

	// Netting assigns, so a second pass leaves the same balances.
	NetBalances(reg, m)
	assert.Equal(t, []int64{3, 6, -9}, reg.Balances())
}

func TestNetBalances_SelfDebtContributesNothing(t *testing.T) {
	reg := threeWayRegistry(t)
	m, err := BuildMatrix(reg, []Debt{
		{Debtor: "P1", Creditor: "P1", Amount: 50},
		{Debtor: "P2", Creditor: "P1", Amount: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), m.Owed(1, 1))

	NetBalances(reg, m)
	assert.Equal(t, []int64{0, 10, -10}, reg.Balances())
}

func TestNetBalances_Empty(t *testing.T) {
	reg := threeWayRegistry(t)
	m, err := BuildMatrix(reg, nil)
	require.NoError(t, err)

	NetBalances(reg, m)
	assert.True(t, reg.Settled())
}
