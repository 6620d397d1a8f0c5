package expenses

import (
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

func TestEvenSplitsExactToTheCent(t *testing.T) {
	// 100.00 / 3 does not divide evenly; leftover cent lands on the payer.
	splits := evenSplits(dec("100.00"), []int{1, 2, 3}, 1)

	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
		if s.UserID == 1 {
			if !s.Amount.Equal(dec("33.34")) {
				t.Errorf("payer share = %s, want 33.34", s.Amount)
			}
		} else if !s.Amount.Equal(dec("33.33")) {
			t.Errorf("share for user %d = %s, want 33.33", s.UserID, s.Amount)
		}
	}
	if !sum.Equal(dec("100.00")) {
		t.Errorf("splits sum to %s, want 100.00", sum)
	}
}

func TestEvenSplitsCleanDivision(t *testing.T) {
	splits := evenSplits(dec("90.00"), []int{1, 2, 3}, 2)
	for _, s := range splits {
		if !s.Amount.Equal(dec("30.00")) {
			t.Errorf("share for user %d = %s, want 30.00", s.UserID, s.Amount)
		}
	}
}

func TestValidateSplits(t *testing.T) {
	members := []int{1, 2, 3}

	cases := []struct {
		name   string
		splits []splitInput
		amount decimal.Decimal
		ok     bool
	}{
		{
			name: "exact sum",
			splits: []splitInput{
				{UserID: 1, Amount: dec("60.00")},
				{UserID: 2, Amount: dec("40.00")},
			},
			amount: dec("100.00"),
			ok:     true,
		},
		{
			name: "sum off by a cent",
			splits: []splitInput{
				{UserID: 1, Amount: dec("60.00")},
				{UserID: 2, Amount: dec("39.99")},
			},
			amount: dec("100.00"),
			ok:     false,
		},
		{
			name: "non-member in splits",
			splits: []splitInput{
				{UserID: 9, Amount: dec("100.00")},
			},
			amount: dec("100.00"),
			ok:     false,
		},
		{
			name: "duplicate user",
			splits: []splitInput{
				{UserID: 1, Amount: dec("50.00")},
				{UserID: 1, Amount: dec("50.00")},
			},
			amount: dec("100.00"),
			ok:     false,
		},
		{
			name: "negative share",
			splits: []splitInput{
				{UserID: 1, Amount: dec("110.00")},
				{UserID: 2, Amount: dec("-10.00")},
			},
			amount: dec("100.00"),
			ok:     false,
		},
		{
			name: "zero share is allowed",
			splits: []splitInput{
				{UserID: 1, Amount: dec("100.00")},
				{UserID: 2, Amount: dec("0.00")},
			},
			amount: dec("100.00"),
			ok:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateSplits(tc.splits, tc.amount, members)
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}
