package models

import "context"

// Profile is the Google account identity kept in the session and returned
// by /auth/status. Fields are mapped from ID-token claims.
type Profile struct {
	ID            string `json:"id"` // OIDC subject
	DisplayName   string `json:"displayName"`
	GivenName     string `json:"givenName,omitempty"`
	FamilyName    string `json:"familyName,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	Picture       string `json:"picture,omitempty"`
	Provider      string `json:"provider"`
}

// Identity is the authenticated capability attached to a request.
type Identity struct {
	AccessToken string  `json:"-"`
	Profile     Profile `json:"profile"`
}

// Valid reports whether the identity carries a user and a bearer credential.
func (i *Identity) Valid() bool {
	return i != nil && i.Profile.ID != "" && i.AccessToken != ""
}

type contextKey string

const identityContextKey = contextKey("identity")

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity attached by the session middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// ProfileFromClaims maps Google ID-token claims onto a Profile.
// Returns nil when the subject claim is missing.
func ProfileFromClaims(claims map[string]interface{}) *Profile {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	p := &Profile{ID: sub, Provider: "google"}
	p.DisplayName, _ = claims["name"].(string)
	p.GivenName, _ = claims["given_name"].(string)
	p.FamilyName, _ = claims["family_name"].(string)
	p.Email, _ = claims["email"].(string)
	p.Picture, _ = claims["picture"].(string)
	switch v := claims["email_verified"].(type) {
	case bool:
		p.EmailVerified = v
	case string:
		p.EmailVerified = v == "true"
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Email
	}
	return p
}
