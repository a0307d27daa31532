package jwtx

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedVerifier remembers the claims of tokens that already passed
// verification. Signature, algorithm and issuer are fixed for a given token
// string and secret, so a hit only re-checks expiry. Failures are never
// cached.
type CachedVerifier struct {
	next  Verifier
	cache *lru.Cache[string, Claims]
	now   func() time.Time
}

// NewCachedVerifier wraps next with an LRU of size entries. A size of zero or
// less returns next unchanged.
func NewCachedVerifier(next Verifier, size int) (Verifier, error) {
	if size <= 0 {
		return next, nil
	}
	c, err := lru.New[string, Claims](size)
	if err != nil {
		return nil, fmt.Errorf("jwtx: token cache: %w", err)
	}
	return &CachedVerifier{next: next, cache: c, now: time.Now}, nil
}

func (v *CachedVerifier) Verify(token string) (Claims, error) {
	if claims, ok := v.cache.Get(token); ok {
		if claims.ExpiresAt == nil || !v.now().Before(claims.ExpiresAt.Time) {
			v.cache.Remove(token)
			return Claims{}, ErrExpired
		}
		return claims, nil
	}

	claims, err := v.next.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	v.cache.Add(token, claims)
	return claims, nil
}

// Len reports the number of cached tokens.
func (v *CachedVerifier) Len() int { return v.cache.Len() }
