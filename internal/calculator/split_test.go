package calculator

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/mmynk/cashflow/internal/settlement"
)

func TestSplitExpense(t *testing.T) {
	tests := []struct {
		name         string
		expense      Expense
		wantErr      error
		wantShares   map[string]int64
		validateFunc func(t *testing.T, debts []settlement.Debt)
	}{
		{
			name: "equal split between two",
			expense: Expense{
				Payer:        "Alice",
				Amount:       1000,
				Participants: []string{"Alice", "Bob"},
			},
			wantShares: map[string]int64{"Alice": 500, "Bob": 500},
			validateFunc: func(t *testing.T, debts []settlement.Debt) {
				want := []settlement.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: 500}}
				if !reflect.DeepEqual(debts, want) {
					t.Errorf("debts = %+v, want %+v", debts, want)
				}
			},
		},
		{
			name: "remainder goes to the first participants",
			expense: Expense{
				Payer:        "Alice",
				Amount:       100,
				Participants: []string{"Bob", "Charlie", "Alice"},
			},
			// 100 / 3 = 33 r 1
			wantShares: map[string]int64{"Bob": 34, "Charlie": 33, "Alice": 33},
			validateFunc: func(t *testing.T, debts []settlement.Debt) {
				if len(debts) != 2 {
					t.Fatalf("expected 2 debts, got %d", len(debts))
				}
				if debts[0].Debtor != "Bob" || debts[0].Amount != 34 {
					t.Errorf("first debt = %+v, want Bob owing 34", debts[0])
				}
			},
		},
		{
			name: "payer outside the split",
			expense: Expense{
				Payer:        "Treasurer",
				Amount:       90,
				Participants: []string{"Bob", "Charlie"},
			},
			wantShares: map[string]int64{"Bob": 45, "Charlie": 45},
			validateFunc: func(t *testing.T, debts []settlement.Debt) {
				if len(debts) != 2 {
					t.Fatalf("expected 2 debts, got %d", len(debts))
				}
				for _, d := range debts {
					if d.Creditor != "Treasurer" {
						t.Errorf("creditor = %s, want Treasurer", d.Creditor)
					}
				}
			},
		},
		{
			name: "weighted split",
			expense: Expense{
				Payer:        "Alice",
				Amount:       1001,
				Participants: []string{"Alice", "Bob", "Charlie"},
				Weights:      map[string]int64{"Alice": 2, "Charlie": 0},
			},
			// 1001*2/3 = 667, 1001*1/3 = 333, 0; remainder 1 goes to Alice.
			wantShares: map[string]int64{"Alice": 668, "Bob": 333, "Charlie": 0},
			validateFunc: func(t *testing.T, debts []settlement.Debt) {
				want := []settlement.Debt{{Debtor: "Bob", Creditor: "Alice", Amount: 333}}
				if !reflect.DeepEqual(debts, want) {
					t.Errorf("debts = %+v, want %+v", debts, want)
				}
			},
		},
		{
			name:    "zero amount should error",
			expense: Expense{Payer: "Alice", Amount: 0, Participants: []string{"Alice"}},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "no participants should error",
			expense: Expense{Payer: "Alice", Amount: 10},
			wantErr: ErrNoParticipants,
		},
		{
			name:    "missing payer should error",
			expense: Expense{Amount: 10, Participants: []string{"Alice"}},
			wantErr: ErrMissingPayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, debts, err := SplitExpense(tt.expense)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SplitExpense() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitExpense() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(shares, tt.wantShares) {
				t.Errorf("shares = %v, want %v", shares, tt.wantShares)
			}
			var sum int64
			for _, s := range shares {
				sum += s
			}
			if sum != tt.expense.Amount {
				t.Errorf("shares sum to %d, want %d", sum, tt.expense.Amount)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, debts)
			}
		})
	}
}

func TestSplitExpense_InvalidWeights(t *testing.T) {
	_, _, err := SplitExpense(Expense{
		Payer:        "Alice",
		Amount:       10,
		Participants: []string{"Alice", "Bob"},
		Weights:      map[string]int64{"Alice": 0, "Bob": 0},
	})
	if err == nil {
		t.Error("expected error for all-zero weights")
	}

	_, _, err = SplitExpense(Expense{
		Payer:        "Alice",
		Amount:       10,
		Participants: []string{"Alice", "Alice"},
	})
	if err == nil {
		t.Error("expected error for duplicate participant")
	}
}

func TestGroupBalances(t *testing.T) {
	balances, err := GroupBalances(
		[]string{"T", "Alice", "Bob"},
		[]settlement.Debt{
			{Debtor: "Bob", Creditor: "Alice", Amount: 30},
			{Debtor: "Alice", Creditor: "T", Amount: 10},
			{Debtor: "Bob", Creditor: "Bob", Amount: 99},
		},
	)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}

	want := []MemberBalance{
		{Name: "T", NetBalance: 10, TotalOwed: 10},
		{Name: "Alice", NetBalance: 20, TotalOwed: 30, TotalOwes: 10},
		{Name: "Bob", NetBalance: -30, TotalOwes: 30},
	}
	if !reflect.DeepEqual(balances, want) {
		t.Errorf("balances = %+v, want %+v", balances, want)
	}

	if _, err := GroupBalances([]string{"T"}, []settlement.Debt{{Debtor: "X", Creditor: "T", Amount: 1}}); err == nil {
		t.Error("expected error for unknown member")
	}
}

func TestGroupBalances_Overflow(t *testing.T) {
	_, err := GroupBalances([]string{"T", "A", "B"}, []settlement.Debt{
		{Debtor: "A", Creditor: "B", Amount: math.MaxInt64},
		{Debtor: "B", Creditor: "A", Amount: 1},
	})
	if !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestSplitExpense_LargeAmounts(t *testing.T) {
	tests := []struct {
		name       string
		expense    Expense
		wantShares map[string]int64
	}{
		{
			name: "heavy weight does not overflow the product",
			expense: Expense{
				Payer:        "a",
				Amount:       1_000_000_000_000,
				Participants: []string{"a", "b"},
				Weights:      map[string]int64{"a": 100_000_000, "b": 1},
			},
			// floor(1e12*1e8/(1e8+1)) = 999999990000, floor(1e12/(1e8+1)) = 9999,
			// and the leftover unit goes to a.
			wantShares: map[string]int64{"a": 999_999_990_001, "b": 9_999},
		},
		{
			name: "largest amount splits exactly",
			expense: Expense{
				Payer:        "x",
				Amount:       math.MaxInt64,
				Participants: []string{"x", "y"},
				Weights:      map[string]int64{"x": 3, "y": 2},
			},
			wantShares: map[string]int64{"x": 5534023222112865485, "y": 3689348814741910322},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan struct{})
			var (
				shares map[string]int64
				err    error
			)
			go func() {
				defer close(done)
				shares, _, err = SplitExpense(tt.expense)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("SplitExpense did not return")
			}

			if err != nil {
				t.Fatalf("SplitExpense() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(shares, tt.wantShares) {
				t.Errorf("shares = %v, want %v", shares, tt.wantShares)
			}
			for p, s := range shares {
				if s < 0 {
					t.Errorf("share for %s is negative: %d", p, s)
				}
			}
		})
	}
}

func TestSplitExpense_WeightOverflow(t *testing.T) {
	_, _, err := SplitExpense(Expense{
		Payer:        "a",
		Amount:       10,
		Participants: []string{"a", "b"},
		Weights:      map[string]int64{"a": math.MaxInt64},
	})
	if !errors.Is(err, ErrWeightOverflow) {
		t.Errorf("expected ErrWeightOverflow, got %v", err)
	}
}
