package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const stateIssuer = "ytdash/oauth-state"

// ErrInvalidState is returned when the OAuth state does not verify or does
// not match the nonce bound to the browser.
var ErrInvalidState = errors.New("invalid oauth state")

type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// NewNonce returns 16 random bytes hex-encoded.
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateState creates a signed OAuth state parameter carrying nonce.
// The same nonce is stored in a short-lived cookie and compared on callback.
func GenerateState(secret, nonce string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

// VerifyState checks signature, expiry and issuer of state and that it was
// issued for nonce.
func VerifyState(secret, state, nonce string) error {
	if state == "" || nonce == "" {
		return ErrInvalidState
	}
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(stateIssuer))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if claims.ExpiresAt == nil {
		return fmt.Errorf("%w: missing exp", ErrInvalidState)
	}
	if claims.Nonce != nonce {
		return fmt.Errorf("%w: nonce mismatch", ErrInvalidState)
	}
	return nil
}
