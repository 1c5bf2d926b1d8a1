package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks password against stored. Stored values that are not
// bcrypt hashes are legacy plaintext credentials; a match reports needsUpgrade.
func VerifyPassword(stored, password string) (ok bool, needsUpgrade bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	match := subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	return match, match
}

// isBcryptHash reports whether stored parses as a bcrypt hash. A "$2" prefix
// alone is not enough; plaintext credentials may start with it.
func isBcryptHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
