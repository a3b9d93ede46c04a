// Package auth issues and verifies the JWTs handed out by the server and
// models the authentication state attached to a request.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HMAC key accepted, in bytes.
const MinKeyLength = 32

// SigningKey is the process-wide HMAC secret. It is created once at startup
// and never changes afterwards.
type SigningKey struct {
	key    []byte
	method *jwt.SigningMethodHMAC
}

// NewSigningKey derives key material from the UTF-8 bytes of secret. The
// HMAC variant follows the key length: 64 bytes or more use HS512, 48 or
// more HS384, anything else HS256.
func NewSigningKey(secret string) (*SigningKey, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}

	key := []byte(secret)
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing secret is %d bytes, need at least %d", len(key), MinKeyLength)
	}

	method := jwt.SigningMethodHS256
	switch {
	case len(key) >= 64:
		method = jwt.SigningMethodHS512
	case len(key) >= 48:
		method = jwt.SigningMethodHS384
	}

	return &SigningKey{key: key, method: method}, nil
}

// Algorithm returns the JWS "alg" value, e.g. "HS256".
func (k *SigningKey) Algorithm() string {
	return k.method.Alg()
}
