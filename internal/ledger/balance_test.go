package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBalancesSingleExpenseEvenSplit(t *testing.T) {
	// 100.00 paid by X (1), split 50/50 between X and Y (2).
	expenses := []Expense{
		{
			ID:     1,
			PaidBy: 1,
			Amount: dec("100.00"),
			Splits: []Split{
				{UserID: 1, Amount: dec("50.00")},
				{UserID: 2, Amount: dec("50.00")},
			},
		},
	}

	balances, err := ComputeBalances([]int{1, 2}, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balances[1].Equal(dec("50.00")) {
		t.Errorf("balance(X) = %s, want 50.00", balances[1])
	}
	if !balances[2].Equal(dec("-50.00")) {
		t.Errorf("balance(Y) = %s, want -50.00", balances[2])
	}
}

func TestComputeBalancesSettlementClearsDebt(t *testing.T) {
	expenses := []Expense{
		{
			ID:     1,
			PaidBy: 1,
			Amount: dec("100.00"),
			Splits: []Split{
				{UserID: 1, Amount: dec("50.00")},
				{UserID: 2, Amount: dec("50.00")},
			},
		},
	}
	settlements := []Settlement{
		{FromUser: 2, ToUser: 1, Amount: dec("50.00")},
	}

	balances, err := ComputeBalances([]int{1, 2}, expenses, settlements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id, bal := range balances {
		if !bal.IsZero() {
			t.Errorf("balance(%d) = %s, want 0.00", id, bal)
		}
	}
}

func TestComputeBalancesMembersWithoutRowsAreZero(t *testing.T) {
	balances, err := ComputeBalances([]int{1, 2, 3}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(balances))
	}
	for id, bal := range balances {
		if !bal.IsZero() {
			t.Errorf("balance(%d) = %s, want 0", id, bal)
		}
	}
}

func TestComputeBalancesSumToZero(t *testing.T) {
	// Arbitrary mix where every expense's splits sum to its amount.
	expenses := []Expense{
		{
			ID:     1,
			PaidBy: 1,
			Amount: dec("90.00"),
			Splits: []Split{
				{UserID: 1, Amount: dec("30.00")},
				{UserID: 2, Amount: dec("30.00")},
				{UserID: 3, Amount: dec("30.00")},
			},
		},
		{
			ID:     2,
			PaidBy: 2,
			Amount: dec("45.50"),
			Splits: []Split{
				{UserID: 2, Amount: dec("20.50")},
				{UserID: 3, Amount: dec("25.00")},
			},
		},
		{
			ID:     3,
			PaidBy: 3,
			Amount: dec("12.34"),
			Splits: []Split{
				{UserID: 1, Amount: dec("12.34")},
			},
		},
	}
	settlements := []Settlement{
		{FromUser: 3, ToUser: 1, Amount: dec("17.00")},
		{FromUser: 2, ToUser: 1, Amount: dec("5.25")},
	}

	balances, err := ComputeBalances([]int{1, 2, 3}, expenses, settlements)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, bal := range balances {
		sum = sum.Add(bal)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func TestComputeBalancesIdempotent(t *testing.T) {
	expenses := []Expense{
		{
			ID:     1,
			PaidBy: 1,
			Amount: dec("75.00"),
			Splits: []Split{
				{UserID: 1, Amount: dec("25.00")},
				{UserID: 2, Amount: dec("25.00")},
				{UserID: 3, Amount: dec("25.00")},
			},
		},
	}

	first, err := ComputeBalances([]int{1, 2, 3}, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeBalances([]int{1, 2, 3}, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id := range first {
		if !first[id].Equal(second[id]) {
			t.Errorf("balance(%d) differs between runs: %s vs %s", id, first[id], second[id])
		}
	}
}

func TestComputeBalancesNoFloatDrift(t *testing.T) {
	// 0.10 a hundred times; float64 would accumulate drift here.
	var expenses []Expense
	for i := 0; i < 100; i++ {
		expenses = append(expenses, Expense{
			ID:     i + 1,
			PaidBy: 1,
			Amount: dec("0.10"),
			Splits: []Split{{UserID: 2, Amount: dec("0.10")}},
		})
	}

	balances, err := ComputeBalances([]int{1, 2}, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balances[1].Equal(dec("10.00")) {
		t.Errorf("balance(1) = %s, want 10.00", balances[1])
	}
	if !balances[2].Equal(dec("-10.00")) {
		t.Errorf("balance(2) = %s, want -10.00", balances[2])
	}
}

func TestComputeBalancesSkewedSplitsReportedAsIs(t *testing.T) {
	// Splits deliberately do not sum to the amount; the engine must not
	// reconcile.
	expenses := []Expense{
		{
			ID:     1,
			PaidBy: 1,
			Amount: dec("100.00"),
			Splits: []Split{{UserID: 2, Amount: dec("40.00")}},
		},
	}

	balances, err := ComputeBalances([]int{1, 2}, expenses, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !balances[1].Equal(dec("100.00")) {
		t.Errorf("balance(1) = %s, want 100.00", balances[1])
	}
	if !balances[2].Equal(dec("-40.00")) {
		t.Errorf("balance(2) = %s, want -40.00", balances[2])
	}
}

func TestComputeBalancesInvalidInput(t *testing.T) {
	cases := []struct {
		name        string
		members     []int
		expenses    []Expense
		settlements []Settlement
	}{
		{
			name:    "split references non-member",
			members: []int{1},
			expenses: []Expense{
				{ID: 1, PaidBy: 1, Amount: dec("10.00"), Splits: []Split{{UserID: 9, Amount: dec("10.00")}}},
			},
		},
		{
			name:    "payer is non-member",
			members: []int{1},
			expenses: []Expense{
				{ID: 1, PaidBy: 9, Amount: dec("10.00")},
			},
		},
		{
			name:    "non-positive expense amount",
			members: []int{1},
			expenses: []Expense{
				{ID: 1, PaidBy: 1, Amount: dec("0.00")},
			},
		},
		{
			name:    "negative split amount",
			members: []int{1, 2},
			expenses: []Expense{
				{ID: 1, PaidBy: 1, Amount: dec("10.00"), Splits: []Split{{UserID: 2, Amount: dec("-1.00")}}},
			},
		},
		{
			name:        "settlement party is non-member",
			members:     []int{1},
			settlements: []Settlement{{FromUser: 1, ToUser: 9, Amount: dec("5.00")}},
		},
		{
			name:        "non-positive settlement amount",
			members:     []int{1, 2},
			settlements: []Settlement{{FromUser: 1, ToUser: 2, Amount: dec("-5.00")}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeBalances(tc.members, tc.expenses, tc.settlements)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
