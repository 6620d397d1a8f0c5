package models

import "database/sql"

type Apartment struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	Name      string         `json:"name,omitempty" db:"name,omitempty"`
	JoinCode  string         `json:"join_code,omitempty" db:"join_code,omitempty"`
	CreatedBy int            `json:"created_by,omitempty" db:"created_by,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}
