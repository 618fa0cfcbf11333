package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes
const BcryptCost = 12

// PasswordHasher hashes and verifies passwords. The cost is configurable so tests
// can run with bcrypt.MinCost.
type PasswordHasher struct {
	Cost int
}

// NewPasswordHasher returns a hasher using BcryptCost.
func NewPasswordHasher() PasswordHasher {
	return PasswordHasher{Cost: BcryptCost}
}

// Hash returns the bcrypt hash of password
func (h PasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = BcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Check reports whether password matches the stored hash
func (h PasswordHasher) Check(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
