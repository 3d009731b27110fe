package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the registration-time floor for local passwords.
const MinPasswordLength = 6

// bcryptCost trades hashing latency against brute-force resistance. Cost 12
// keeps a login under ~100ms on current hardware.
const bcryptCost = 12

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
