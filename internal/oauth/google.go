package oauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type Google struct {
	cfg      *oauth2.Config
	validate validateFunc
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrInvalidCredential)
	}
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil, fmt.Errorf("%w: token response has no id_token", ErrInvalidCredential)
	}
	return g.VerifyIDToken(ctx, raw)
}

func (g *Google) VerifyIDToken(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty id token", ErrInvalidCredential)
	}
	payload, err := g.validate(ctx, raw, g.cfg.ClientID)
	if err != nil {
		return nil, errors.Join(ErrInvalidCredential, err)
	}
	return identityFromPayload(payload)
}

func identityFromPayload(p *idtoken.Payload) (*Identity, error) {
	id := &Identity{Subject: p.Subject}
	if v, ok := p.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := p.Claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	if v, ok := p.Claims["name"].(string); ok {
		id.Name = v
	}
	if v, ok := p.Claims["picture"].(string); ok {
		id.Picture = v
	}
	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: id token lacks subject or email", ErrInvalidCredential)
	}
	return id, nil
}
