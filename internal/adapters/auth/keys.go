package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"boardroom/internal/domain"
)

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a KeyHasher that hashes board access keys with bcrypt.
func NewBcryptHasher(cost int) domain.KeyHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash access key: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}
