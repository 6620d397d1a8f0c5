package services

import (
	"context"
	"errors"
	"testing"

	"roomledger/internal/models"
)

type fakeStore struct {
	apartments  map[string]models.Apartment // keyed by join code
	memberships map[int]map[int]bool        // apartment id -> user id
	ledgerRows  map[int]map[int]bool        // apartment id -> users referenced by expenses/settlements
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apartments:  make(map[string]models.Apartment),
		memberships: make(map[int]map[int]bool),
		ledgerRows:  make(map[int]map[int]bool),
		nextID:      1,
	}
}

func (f *fakeStore) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	_, ok := f.apartments[code]
	return ok, nil
}

func (f *fakeStore) CreateApartment(ctx context.Context, name, code string, creatorID int) (models.Apartment, error) {
	a := models.Apartment{ID: f.nextID, Name: name, JoinCode: code, CreatedBy: creatorID}
	f.nextID++
	f.apartments[code] = a
	f.memberships[a.ID] = map[int]bool{creatorID: true}
	return a, nil
}

func (f *fakeStore) ApartmentByCode(ctx context.Context, code string) (models.Apartment, error) {
	a, ok := f.apartments[code]
	if !ok {
		return models.Apartment{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) IsMember(ctx context.Context, apartmentID, userID int) (bool, error) {
	return f.memberships[apartmentID][userID], nil
}

func (f *fakeStore) AddMember(ctx context.Context, apartmentID, userID int, role string) (models.Membership, error) {
	if f.memberships[apartmentID] == nil {
		f.memberships[apartmentID] = make(map[int]bool)
	}
	f.memberships[apartmentID][userID] = true
	m := models.Membership{ID: f.nextID, ApartmentID: apartmentID, UserID: userID, Role: role}
	f.nextID++
	return m, nil
}

func (f *fakeStore) ApartmentByID(ctx context.Context, id int) (models.Apartment, error) {
	for _, a := range f.apartments {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Apartment{}, ErrNotFound
}

func (f *fakeStore) RemoveMember(ctx context.Context, apartmentID, userID int) error {
	if !f.memberships[apartmentID][userID] {
		return ErrNotFound
	}
	delete(f.memberships[apartmentID], userID)
	return nil
}

func (f *fakeStore) HasLedgerRows(ctx context.Context, apartmentID, userID int) (bool, error) {
	return f.ledgerRows[apartmentID][userID], nil
}

func (f *fakeStore) ApartmentsForUser(ctx context.Context, userID int) ([]models.Apartment, error) {
	var out []models.Apartment
	for _, a := range f.apartments {
		if f.memberships[a.ID][userID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestCreateApartmentGeneratesUniqueCode(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Flat 4B", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.JoinCode) != 6 {
		t.Errorf("join code %q is not 6 characters", a.JoinCode)
	}
	if !store.memberships[a.ID][1] {
		t.Error("creator was not added as a member")
	}

	b, err := svc.Create(context.Background(), "Flat 4B again", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.JoinCode == b.JoinCode {
		t.Errorf("two apartments share join code %q", a.JoinCode)
	}
}

func TestCreateApartmentRejectsBlankName(t *testing.T) {
	svc := NewApartmentService(newFakeStore())

	if _, err := svc.Create(context.Background(), "   ", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestJoinApartment(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, joined, err := svc.Join(context.Background(), a.JoinCode, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if joined.ID != a.ID {
		t.Errorf("joined apartment %d, want %d", joined.ID, a.ID)
	}
	if m.UserID != 2 || m.ApartmentID != a.ID {
		t.Errorf("membership = %+v, want user 2 in apartment %d", m, a.ID)
	}
}

func TestJoinApartmentUnknownCode(t *testing.T) {
	svc := NewApartmentService(newFakeStore())

	_, _, err := svc.Join(context.Background(), "ZZ99X1", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinApartmentTwice(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := svc.Join(context.Background(), a.JoinCode, 2); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	_, _, err = svc.Join(context.Background(), a.JoinCode, 2)
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestJoinApartmentNormalizesCode(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	padded := "  " + a.JoinCode + " "
	if _, _, err := svc.Join(context.Background(), padded, 2); err != nil {
		t.Fatalf("join with padded code failed: %v", err)
	}
}

func TestLeaveApartment(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Join(context.Background(), a.JoinCode, 2); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if err := svc.Leave(context.Background(), a.ID, 2); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if store.memberships[a.ID][2] {
		t.Error("membership was not removed")
	}
}

func TestLeaveApartmentBlockedWhileInLedger(t *testing.T) {
	// A member who paid or owes anything must stay: dropping them from the
	// member set would leave expenses referencing a non-member, and balance
	// computation for the whole apartment would fail from then on.
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := svc.Join(context.Background(), a.JoinCode, 2); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	store.ledgerRows[a.ID] = map[int]bool{2: true}

	err = svc.Leave(context.Background(), a.ID, 2)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !store.memberships[a.ID][2] {
		t.Error("member was removed despite ledger references")
	}
}

func TestLeaveApartmentCreatorCannotLeave(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Leave(context.Background(), a.ID, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeaveApartmentNotAMember(t *testing.T) {
	store := newFakeStore()
	svc := NewApartmentService(store)

	a, err := svc.Create(context.Background(), "Shared place", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Leave(context.Background(), a.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinApartmentRejectsMalformedCode(t *testing.T) {
	svc := NewApartmentService(newFakeStore())

	_, _, err := svc.Join(context.Background(), "SHORT", 2)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
