package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is a suggested payment that would move both parties toward zero.
type Transfer struct {
	FromUser int
	ToUser   int
	Amount   decimal.Decimal
}

// SuggestSettlements turns a balance map into a short list of transfers that
// would clear every balance. Greedy matching: walk debtors and creditors in
// deterministic order, pairing the current debtor with the current creditor
// for min(owed, due) until one side is exhausted.
func SuggestSettlements(balances map[int]decimal.Decimal) []Transfer {
	var debtors, creditors []int
	for id, bal := range balances {
		switch {
		case bal.IsNegative():
			debtors = append(debtors, id)
		case bal.IsPositive():
			creditors = append(creditors, id)
		}
	}
	sort.Ints(debtors)
	sort.Ints(creditors)

	owed := make(map[int]decimal.Decimal, len(debtors))
	due := make(map[int]decimal.Decimal, len(creditors))
	for _, id := range debtors {
		owed[id] = balances[id].Neg()
	}
	for _, id := range creditors {
		due[id] = balances[id]
	}

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := owed[debtor]
		if due[creditor].LessThan(amount) {
			amount = due[creditor]
		}

		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				FromUser: debtor,
				ToUser:   creditor,
				Amount:   amount,
			})
		}

		owed[debtor] = owed[debtor].Sub(amount)
		due[creditor] = due[creditor].Sub(amount)

		if !owed[debtor].IsPositive() {
			i++
		}
		if !due[creditor].IsPositive() {
			j++
		}
	}

	return transfers
}
