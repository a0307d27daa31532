package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACSigner issues HS256 tokens with a shared secret.
type HMACSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// HMACVerifier checks HS256 tokens produced by an HMACSigner with the same secret.
type HMACVerifier struct {
	secret []byte
	issuer string
}

// NewHMAC returns a signer/verifier pair sharing secret. An empty issuer
// disables the iss check.
func NewHMAC(secret []byte, issuer string) (*HMACSigner, *HMACVerifier, error) {
	if len(secret) == 0 {
		return nil, nil, errors.New("jwtx: empty signing secret")
	}
	key := append([]byte(nil), secret...)
	return &HMACSigner{secret: key, issuer: issuer, now: time.Now},
		&HMACVerifier{secret: key, issuer: issuer},
		nil
}

func (s *HMACSigner) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Issue signs {sub: subject, typ: typ, exp: now+ttl}.
func (s *HMACSigner) Issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	claims := NewClaims(subject, s.issuer, ttl, s.now())
	claims.Type = typ
	return s.Sign(claims)
}

// Sign encodes arbitrary claims. Mostly useful to tests that need to forge
// odd shapes such as a missing subject.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	out, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return out, nil
}

// Verify checks signature, algorithm, expiry and issuer, and that a subject
// is present.
func (v *HMACVerifier) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, ErrMissingSubject)
	}
	return claims, nil
}
