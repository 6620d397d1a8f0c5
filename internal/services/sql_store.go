package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"roomledger/internal/models"
)

// SQLStore implements Store against the shared MySQL connection.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartments WHERE join_code = ?)", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return exists, nil
}

func (s *SQLStore) CreateApartment(ctx context.Context, name, code string, creatorID int) (models.Apartment, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	res, err := tx.ExecContext(ctx, "INSERT INTO apartments (name, join_code, created_by) VALUES (?, ?, ?)", name, code, creatorID)
	if err != nil {
		tx.Rollback()
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO apartment_members (apartment_id, user_id, role) VALUES (?, ?, 'admin')", id, creatorID)
	if err != nil {
		tx.Rollback()
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return models.Apartment{
		ID:        int(id),
		Name:      name,
		JoinCode:  code,
		CreatedBy: creatorID,
	}, nil
}

func (s *SQLStore) ApartmentByCode(ctx context.Context, code string) (models.Apartment, error) {
	var a models.Apartment
	err := s.DB.QueryRowContext(ctx, "SELECT id, name, join_code, created_by FROM apartments WHERE join_code = ?", code).
		Scan(&a.ID, &a.Name, &a.JoinCode, &a.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Apartment{}, fmt.Errorf("%w: no apartment with code %s", ErrNotFound, code)
		}
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return a, nil
}

func (s *SQLStore) ApartmentByID(ctx context.Context, id int) (models.Apartment, error) {
	var a models.Apartment
	err := s.DB.QueryRowContext(ctx, "SELECT id, name, join_code, created_by FROM apartments WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.JoinCode, &a.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Apartment{}, fmt.Errorf("%w: no apartment with id %d", ErrNotFound, id)
		}
		return models.Apartment{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return a, nil
}

func (s *SQLStore) IsMember(ctx context.Context, apartmentID, userID int) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM apartment_members WHERE apartment_id = ? AND user_id = ?)", apartmentID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return exists, nil
}

func (s *SQLStore) AddMember(ctx context.Context, apartmentID, userID int, role string) (models.Membership, error) {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO apartment_members (apartment_id, user_id, role) VALUES (?, ?, ?)", apartmentID, userID, role)
	if err != nil {
		// The unique key backstops the IsMember check under concurrent joins.
		if strings.Contains(err.Error(), "Duplicate entry") {
			return models.Membership{}, fmt.Errorf("%w: user %d already belongs to apartment %d", ErrAlreadyMember, userID, apartmentID)
		}
		return models.Membership{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Membership{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return models.Membership{
		ID:          int(id),
		ApartmentID: apartmentID,
		UserID:      userID,
		Role:        role,
	}, nil
}

func (s *SQLStore) RemoveMember(ctx context.Context, apartmentID, userID int) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM apartment_members WHERE apartment_id = ? AND user_id = ?", apartmentID, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %d is not a member of apartment %d", ErrNotFound, userID, apartmentID)
	}
	return nil
}

// HasLedgerRows reports whether the user is referenced as payer, split
// holder, or settlement party anywhere in the apartment.
func (s *SQLStore) HasLedgerRows(ctx context.Context, apartmentID, userID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM expenses WHERE apartment_id = ? AND paid_by = ?
			UNION
			SELECT 1 FROM expense_splits s
			JOIN expenses e ON s.expense_id = e.id
			WHERE e.apartment_id = ? AND s.user_id = ?
			UNION
			SELECT 1 FROM settlements WHERE apartment_id = ? AND (from_user = ? OR to_user = ?)
		)
	`
	var exists bool
	err := s.DB.QueryRowContext(ctx, query, apartmentID, userID, apartmentID, userID, apartmentID, userID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return exists, nil
}

func (s *SQLStore) ApartmentsForUser(ctx context.Context, userID int) ([]models.Apartment, error) {
	query := `
		SELECT a.id, a.name, a.join_code, a.created_by, a.created_at
		FROM apartments a
		JOIN apartment_members m ON m.apartment_id = a.id
		WHERE m.user_id = ?
		ORDER BY a.created_at DESC
	`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var apartments []models.Apartment
	for rows.Next() {
		var a models.Apartment
		if err := rows.Scan(&a.ID, &a.Name, &a.JoinCode, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		apartments = append(apartments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return apartments, nil
}
