package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ExternalIdentity is a verified account at an external identity provider.
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool

	// ClientAsserted marks a profile sent by the client without a provider signature.
	ClientAsserted bool
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleVerifier verifies Google ID tokens and runs the authorization code flow.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

// NewGoogleVerifier discovers the provider at issuerURL and prepares the
// OAuth client. redirectURL may be empty when only ID tokens are verified.
func NewGoogleVerifier(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("google client id must not be empty")
	}
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return newGoogleVerifier(provider.Verifier(&oidc.Config{ClientID: clientID}), oauthCfg), nil
}

func newGoogleVerifier(verifier *oidc.IDTokenVerifier, oauthCfg *oauth2.Config) *GoogleVerifier {
	return &GoogleVerifier{verifier: verifier, oauth: oauthCfg}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleVerifier) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and verifies the ID token.
func (g *GoogleVerifier) Exchange(ctx context.Context, code string) (*ExternalIdentity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response has no id_token")
	}
	return g.VerifyIDToken(ctx, rawIDToken)
}

// VerifyIDToken checks signature, issuer, audience and expiry of rawIDToken.
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*ExternalIdentity, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("id token carries no email")
	}
	return &ExternalIdentity{
		Provider:      db.AuthProviderGoogle,
		Subject:       idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}
