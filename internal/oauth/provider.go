package oauth

import (
	"context"
	"errors"
)

var ErrInvalidCredential = errors.New("invalid identity credential")

// Identity is the subset of an external account the shop needs.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type Provider interface {
	// AuthCodeURL is where the browser is sent to start the code flow.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the signed-in identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
	// VerifyIDToken checks a raw ID token issued to this client.
	VerifyIDToken(ctx context.Context, raw string) (*Identity, error)
}
