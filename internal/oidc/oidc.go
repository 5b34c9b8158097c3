package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Token is a minimal interface for token payloads that allows extracting claims.
// It is satisfied by *oidc.IDToken and by test fakes.
type Token interface {
	Claims(v interface{}) error
}

// IDTokenVerifier checks a raw ID token and returns its claims holder.
type IDTokenVerifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the issuer and builds a verifier for clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return newVerifier(provider, clientID), nil
}

func newVerifier(provider *oidc.Provider, clientID string) *Verifier {
	return &Verifier{provider: provider, verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}
}

// Verify verifies the raw ID token signature, audience and expiry.
func (v *Verifier) Verify(ctx context.Context, raw string) (Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
