// Package password wraps bcrypt hashing behind a small interface so services
// can take it as an injected dependency.
package password

import (
	"github.com/pharmhub-dev/pharmhub/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcrypt(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return "", err
	}
	return string(hash), nil
}

// Verify returns false for a wrong password or a malformed hash, never an error.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
