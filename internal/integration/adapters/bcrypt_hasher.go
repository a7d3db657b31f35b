package adapters

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"

	"github.com/finance-tracker/platform/internal/application/adapter"
)

// bcryptMaxBytes is the longest input bcrypt reads.
const bcryptMaxBytes = 72

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher using bcrypt at cost. A cost of
// zero selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) adapter.PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(plain), h.cost)
	return string(hash), err
}

func (h bcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plain))
}

// prehash folds passwords beyond bcrypt's input limit into a digest so every
// byte counts. The maximum_length validator still bounds the input.
func prehash(plain string) []byte {
	if len(plain) <= bcryptMaxBytes {
		return []byte(plain)
	}
	sum := sha256.Sum256([]byte(plain))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
