package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSuggestSettlementsPairsDebtorsWithCreditors(t *testing.T) {
	balances := map[int]decimal.Decimal{
		1: dec("50.00"),
		2: dec("-30.00"),
		3: dec("-20.00"),
	}

	transfers := SuggestSettlements(balances)
	if len(transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(transfers))
	}

	// Deterministic order: debtor 2 then 3, both paying creditor 1.
	if transfers[0].FromUser != 2 || transfers[0].ToUser != 1 || !transfers[0].Amount.Equal(dec("30.00")) {
		t.Errorf("transfer[0] = %+v, want 2 -> 1 for 30.00", transfers[0])
	}
	if transfers[1].FromUser != 3 || transfers[1].ToUser != 1 || !transfers[1].Amount.Equal(dec("20.00")) {
		t.Errorf("transfer[1] = %+v, want 3 -> 1 for 20.00", transfers[1])
	}
}

func TestSuggestSettlementsClearsAllBalances(t *testing.T) {
	balances := map[int]decimal.Decimal{
		1: dec("12.50"),
		2: dec("7.25"),
		3: dec("-4.75"),
		4: dec("-15.00"),
	}

	remaining := make(map[int]decimal.Decimal, len(balances))
	for id, bal := range balances {
		remaining[id] = bal
	}

	for _, tr := range SuggestSettlements(balances) {
		remaining[tr.FromUser] = remaining[tr.FromUser].Add(tr.Amount)
		remaining[tr.ToUser] = remaining[tr.ToUser].Sub(tr.Amount)
	}

	for id, bal := range remaining {
		if !bal.IsZero() {
			t.Errorf("after transfers, balance(%d) = %s, want 0", id, bal)
		}
	}
}

func TestSuggestSettlementsAllZero(t *testing.T) {
	balances := map[int]decimal.Decimal{
		1: decimal.Zero,
		2: decimal.Zero,
	}
	if transfers := SuggestSettlements(balances); len(transfers) != 0 {
		t.Fatalf("expected no transfers, got %d", len(transfers))
	}
}
