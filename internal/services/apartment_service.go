package services

import (
	"context"
	"fmt"
	"strings"

	"roomledger/internal/models"
)

// Store is the persistence surface the apartment service needs. The SQL
// implementation lives in sql_store.go; tests use an in-memory fake.
type Store interface {
	CodeChecker
	CreateApartment(ctx context.Context, name, code string, creatorID int) (models.Apartment, error)
	ApartmentByCode(ctx context.Context, code string) (models.Apartment, error)
	ApartmentByID(ctx context.Context, id int) (models.Apartment, error)
	IsMember(ctx context.Context, apartmentID, userID int) (bool, error)
	AddMember(ctx context.Context, apartmentID, userID int, role string) (models.Membership, error)
	RemoveMember(ctx context.Context, apartmentID, userID int) error
	HasLedgerRows(ctx context.Context, apartmentID, userID int) (bool, error)
	ApartmentsForUser(ctx context.Context, userID int) ([]models.Apartment, error)
}

type ApartmentService struct {
	store Store
}

func NewApartmentService(store Store) *ApartmentService {
	return &ApartmentService{store: store}
}

// Create makes a new apartment with a fresh unique join code and records the
// creator as its admin member.
func (s *ApartmentService) Create(ctx context.Context, name string, creatorID int) (models.Apartment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Apartment{}, fmt.Errorf("%w: apartment name is required", ErrInvalidInput)
	}
	if len(name) > 100 {
		return models.Apartment{}, fmt.Errorf("%w: apartment name too long", ErrInvalidInput)
	}

	code, err := NewUniqueJoinCode(ctx, s.store)
	if err != nil {
		return models.Apartment{}, err
	}

	apartment, err := s.store.CreateApartment(ctx, name, code, creatorID)
	if err != nil {
		return models.Apartment{}, err
	}
	return apartment, nil
}

// Join adds the caller to the apartment matching the code. Unknown codes fail
// with ErrNotFound; joining twice fails with ErrAlreadyMember.
func (s *ApartmentService) Join(ctx context.Context, code string, userID int) (models.Membership, models.Apartment, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != len(joinCodePattern) {
		return models.Membership{}, models.Apartment{}, fmt.Errorf("%w: join code must be %d characters", ErrInvalidInput, len(joinCodePattern))
	}

	apartment, err := s.store.ApartmentByCode(ctx, code)
	if err != nil {
		return models.Membership{}, models.Apartment{}, err
	}

	member, err := s.store.IsMember(ctx, apartment.ID, userID)
	if err != nil {
		return models.Membership{}, models.Apartment{}, err
	}
	if member {
		return models.Membership{}, models.Apartment{}, fmt.Errorf("%w: user %d already belongs to apartment %d", ErrAlreadyMember, userID, apartment.ID)
	}

	membership, err := s.store.AddMember(ctx, apartment.ID, userID, "member")
	if err != nil {
		return models.Membership{}, models.Apartment{}, err
	}
	return membership, apartment, nil
}

// Leave removes the caller's membership. The creator cannot leave, and a
// member still referenced by any expense, split, or settlement must stay:
// those rows survive the membership delete, and without the member in the
// apartment's member set its balances become uncomputable.
func (s *ApartmentService) Leave(ctx context.Context, apartmentID, userID int) error {
	apartment, err := s.store.ApartmentByID(ctx, apartmentID)
	if err != nil {
		return err
	}
	if apartment.CreatedBy == userID {
		return fmt.Errorf("%w: the apartment creator cannot leave; delete the apartment instead", ErrInvalidInput)
	}

	member, err := s.store.IsMember(ctx, apartmentID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%w: user %d is not a member of apartment %d", ErrNotFound, userID, apartmentID)
	}

	referenced, err := s.store.HasLedgerRows(ctx, apartmentID, userID)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("%w: user %d still appears in this apartment's expenses or settlements; settle up before leaving", ErrInvalidInput, userID)
	}

	return s.store.RemoveMember(ctx, apartmentID, userID)
}

func (s *ApartmentService) ListForUser(ctx context.Context, userID int) ([]models.Apartment, error) {
	return s.store.ApartmentsForUser(ctx, userID)
}
