// Package ledger computes per-member net balances for one apartment from its
// expenses, expense splits, and settlements. It is a pure function over rows
// already fetched from the store; it never reconciles inconsistent data, it
// only reports what the rows say.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when rows reference unknown members or carry
// amounts with the wrong sign.
var ErrInvalidInput = errors.New("invalid input")

// Split is one member's share of an expense.
type Split struct {
	UserID int
	Amount decimal.Decimal
}

// Expense is the minimal expense row the engine needs.
type Expense struct {
	ID     int
	PaidBy int
	Amount decimal.Decimal
	Splits []Split
}

// Settlement is a directed payment from one member to another.
type Settlement struct {
	FromUser int
	ToUser   int
	Amount   decimal.Decimal
}

// ComputeBalances returns the signed net balance for every member of the
// apartment. Positive means the group owes the member, negative means the
// member owes the group.
//
// Per expense: the payer is credited the full amount and each split holder is
// debited their share (a payer who is also a split holder nets both). Per
// settlement: the payer is credited and the receiver debited, so a real
// payment moves both parties toward zero. Members with no rows stay at zero.
func ComputeBalances(memberIDs []int, expenses []Expense, settlements []Settlement) (map[int]decimal.Decimal, error) {
	balances := make(map[int]decimal.Decimal, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = decimal.Zero
	}

	for _, e := range expenses {
		if e.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: expense %d has non-positive amount %s", ErrInvalidInput, e.ID, e.Amount)
		}
		if _, ok := balances[e.PaidBy]; !ok {
			return nil, fmt.Errorf("%w: expense %d paid by non-member %d", ErrInvalidInput, e.ID, e.PaidBy)
		}

		balances[e.PaidBy] = balances[e.PaidBy].Add(e.Amount)

		for _, s := range e.Splits {
			if s.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: expense %d has negative split %s for user %d", ErrInvalidInput, e.ID, s.Amount, s.UserID)
			}
			if _, ok := balances[s.UserID]; !ok {
				return nil, fmt.Errorf("%w: expense %d split references non-member %d", ErrInvalidInput, e.ID, s.UserID)
			}
			balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
		}
	}

	for _, s := range settlements {
		if s.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: settlement from %d to %d has non-positive amount %s", ErrInvalidInput, s.FromUser, s.ToUser, s.Amount)
		}
		if _, ok := balances[s.FromUser]; !ok {
			return nil, fmt.Errorf("%w: settlement references non-member %d", ErrInvalidInput, s.FromUser)
		}
		if _, ok := balances[s.ToUser]; !ok {
			return nil, fmt.Errorf("%w: settlement references non-member %d", ErrInvalidInput, s.ToUser)
		}

		balances[s.FromUser] = balances[s.FromUser].Add(s.Amount)
		balances[s.ToUser] = balances[s.ToUser].Sub(s.Amount)
	}

	return balances, nil
}
