package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Settlement records a real-world payment between two members. Rows are
// immutable once created; corrections are made with an offsetting entry.
type Settlement struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	ApartmentID int             `json:"apartment_id,omitempty" db:"apartment_id,omitempty"`
	FromUser    int             `json:"from_user,omitempty" db:"from_user,omitempty"`
	ToUser      int             `json:"to_user,omitempty" db:"to_user,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty" db:"amount,omitempty"`
	Note        string          `json:"note,omitempty" db:"note,omitempty"`
	CreatedBy   int             `json:"created_by,omitempty" db:"created_by,omitempty"`
	CreatedAt   sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
}
