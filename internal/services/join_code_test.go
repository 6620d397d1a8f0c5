package services

import (
	"context"
	"testing"
)

type fakeCodeChecker struct {
	taken map[string]bool
	// collisions forces the first n checked codes to read as taken.
	collisions int
	checked    []string
}

func (f *fakeCodeChecker) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	f.checked = append(f.checked, code)
	if len(f.checked) <= f.collisions {
		return true, nil
	}
	return f.taken[code], nil
}

func TestGenerateJoinCodePattern(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 characters", code)
		}
		for pos, kind := range joinCodePattern {
			c := code[pos]
			switch kind {
			case 'L':
				if c < 'A' || c > 'Z' {
					t.Errorf("code %q position %d: want uppercase letter, got %c", code, pos, c)
				}
			case 'D':
				if c < '0' || c > '9' {
					t.Errorf("code %q position %d: want digit, got %c", code, pos, c)
				}
			}
		}
	}
}

func TestNewUniqueJoinCodeRetriesOnCollision(t *testing.T) {
	// First two candidates read as taken; the third must be accepted.
	store := &fakeCodeChecker{collisions: 2}

	code, err := NewUniqueJoinCode(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.checked) != 3 {
		t.Fatalf("expected 3 uniqueness checks, got %d", len(store.checked))
	}
	if code != store.checked[2] {
		t.Errorf("returned code %q is not the third candidate %q", code, store.checked[2])
	}
	if code == store.checked[0] || code == store.checked[1] {
		t.Errorf("returned code %q collides with a rejected candidate", code)
	}
}

func TestNewUniqueJoinCodeGivesUpEventually(t *testing.T) {
	store := &fakeCodeChecker{collisions: maxCodeAttempts + 1}

	if _, err := NewUniqueJoinCode(context.Background(), store); err == nil {
		t.Fatal("expected an error when every candidate collides")
	}
	if len(store.checked) != maxCodeAttempts {
		t.Errorf("expected %d attempts, got %d", maxCodeAttempts, len(store.checked))
	}
}
