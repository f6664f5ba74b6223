package pwhash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var hashingCost = 12

// InitHashingCost overrides the bcrypt cost factor. Call once at startup,
// before any password is hashed.
func InitHashingCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return
	}
	hashingCost = cost
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashingCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePasswordWithHash checks the password against the stored hash in
// constant time. A mismatch is reported as (false, nil); only unexpected
// failures (malformed hash) produce an error.
func ComparePasswordWithHash(hash string, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
