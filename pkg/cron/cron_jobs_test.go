package cron

import (
	"errors"
	"fmt"
	"sync"
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

func TestNotifyDebtorsEveryDebtorAttemptedWhenSendsFail(t *testing.T) {
	// Many more failing sends than any channel buffer would hold; the call
	// must still attempt every debtor and return.
	var mu sync.Mutex
	sent := make(map[string]string)

	var contacts []memberContact
	balances := make(map[int]decimal.Decimal)
	for i := 1; i <= 20; i++ {
		contacts = append(contacts, memberContact{
			userID:    i,
			email:     fmt.Sprintf("user%d@example.com", i),
			firstName: "Roomie",
		})
		balances[i] = dec("-5.00")
	}
	contacts = append(contacts, memberContact{userID: 21, email: "creditor@example.com", firstName: "Payer"})
	balances[21] = dec("100.00")

	notifyDebtors(contacts, balances, "Flat 4B", func(to, firstName, owed, apartmentName string) error {
		mu.Lock()
		sent[to] = owed
		mu.Unlock()
		return errors.New("smtp unavailable")
	})

	if len(sent) != 20 {
		t.Fatalf("attempted %d sends, want 20", len(sent))
	}
	if _, ok := sent["creditor@example.com"]; ok {
		t.Error("member with a positive balance was emailed")
	}
	for to, owed := range sent {
		if owed != "5.00" {
			t.Errorf("reminder to %s quotes %s, want 5.00", to, owed)
		}
	}
}

func TestNotifyDebtorsSkipsZeroBalances(t *testing.T) {
	contacts := []memberContact{
		{userID: 1, email: "even@example.com", firstName: "Even"},
	}
	balances := map[int]decimal.Decimal{1: decimal.Zero}

	called := false
	notifyDebtors(contacts, balances, "Flat 4B", func(to, firstName, owed, apartmentName string) error {
		called = true
		return nil
	})

	if called {
		t.Error("member with a zero balance was emailed")
	}
}
