package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	ApartmentID int             `json:"apartment_id,omitempty" db:"apartment_id,omitempty"`
	PaidBy      int             `json:"paid_by,omitempty" db:"paid_by,omitempty"`
	CreatedBy   int             `json:"created_by,omitempty" db:"created_by,omitempty"`
	Title       string          `json:"title,omitempty" db:"title,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	ExpenseDate string          `json:"expense_date,omitempty" db:"expense_date,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
