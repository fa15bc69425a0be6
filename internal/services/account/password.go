package account

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier hashes new passwords and checks candidates against stored hashes.
// Verify reports a mismatch as (false, nil); an error means the check itself failed.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// BcryptVerifier verifies bcrypt password hashes
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a verifier hashing at the given cost.
// A cost of 0 uses bcrypt.DefaultCost.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Ensure BcryptVerifier implements the interface
var _ PasswordVerifier = (*BcryptVerifier)(nil)

func (v *BcryptVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v *BcryptVerifier) Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
