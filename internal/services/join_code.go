package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"

	// Cap on uniqueness retries. The code space holds ~45M combinations, so
	// hitting the cap means the store is misbehaving, not that codes ran out.
	maxCodeAttempts = 25
)

// joinCodePattern fixes each position to letters (L) or digits (D).
var joinCodePattern = [6]byte{'L', 'L', 'D', 'D', 'L', 'D'}

// CodeChecker reports whether a join code is already taken.
type CodeChecker interface {
	JoinCodeExists(ctx context.Context, code string) (bool, error)
}

// GenerateJoinCode returns a random 6-character apartment join code in the
// LLDDLD pattern, e.g. "QK41Z7".
func GenerateJoinCode() (string, error) {
	code := make([]byte, len(joinCodePattern))
	for i, kind := range joinCodePattern {
		alphabet := codeLetters
		if kind == 'D' {
			alphabet = codeDigits
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// NewUniqueJoinCode generates codes until the store reports one unused.
func NewUniqueJoinCode(ctx context.Context, store CodeChecker) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateJoinCode()
		if err != nil {
			return "", err
		}

		exists, err := store.JoinCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: checking join code: %v", ErrBackendUnavailable, err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find an unused join code after %d attempts", maxCodeAttempts)
}
