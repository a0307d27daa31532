package cryptox

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured.
const DefaultPasswordCost = 12

var (
	ErrPasswordMismatch = errors.New("cryptox: password does not match")
	ErrPasswordTooLong  = errors.New("cryptox: password exceeds 72 bytes")
)

// BcryptHasher hashes passwords with a fixed bcrypt cost. The encoded output
// ($2a$<cost>$<salt><hash>) carries its own salt and cost, so verification
// needs nothing but the stored string.
type BcryptHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     string
}

// NewBcryptHasher returns a hasher with cost clamped into bcrypt's valid range.
// A zero cost selects DefaultPasswordCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = DefaultPasswordCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns the bcrypt encoding of password under a fresh random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches encodedHash. Malformed hashes are
// reported as a mismatch.
func (h *BcryptHasher) Verify(password, encodedHash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// DummyHash returns a valid hash at this hasher's cost. Comparing against it
// costs the same as comparing against a real user's hash.
func (h *BcryptHasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		out, err := bcrypt.GenerateFromPassword([]byte("dummy-password-never-matches"), h.cost)
		if err != nil {
			panic(fmt.Sprintf("cryptox: dummy hash: %v", err))
		}
		h.dummy = string(out)
	})
	return h.dummy
}
