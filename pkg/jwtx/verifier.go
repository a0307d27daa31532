package jwtx

import (
	"errors"
	"fmt"
	"time"
)

// Signer mints tokens of a given type for a subject.
type Signer interface {
	Issue(subject string, typ TokenType, ttl time.Duration) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyType verifies token with v and requires its typ claim to be typ.
func VerifyType(v Verifier, token string, typ TokenType) (Claims, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.Type != typ {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrWrongType)
	}
	return claims, nil
}

var (
	// ErrInvalidToken covers bad signatures, wrong algorithms, malformed
	// payloads and issuer mismatches.
	ErrInvalidToken   = errors.New("jwtx: invalid token")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrMissingSubject = errors.New("jwtx: missing sub claim")
	ErrWrongType      = errors.New("jwtx: wrong token type")
)
