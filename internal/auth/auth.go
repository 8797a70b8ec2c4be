// Package auth provides the collaborators that supply the bearer token and wallet address
// used for backend calls. Login, logout and token refresh happen elsewhere.
package auth

import (
	"context"

	"github.com/rxtech-lab/hashnipe/internal/errs"
	"github.com/rxtech-lab/hashnipe/internal/utils"
)

// Session is the authentication state visible to the trading core
type Session struct {
	Authenticated bool
	BearerToken   string
	WalletAddress string
	UserID        string
}

// Collaborator supplies the current session
type Collaborator interface {
	Session(ctx context.Context) (Session, error)
}

// WalletCollaborator supplies the connected wallet address
type WalletCollaborator interface {
	ConnectedAddress(ctx context.Context) (string, error)
}

// BearerToken returns the session token or errs.ErrTokenNotFound
func BearerToken(ctx context.Context, c Collaborator) (string, error) {
	if c == nil {
		return "", errs.ErrTokenNotFound
	}
	s, err := c.Session(ctx)
	if err != nil {
		return "", err
	}
	if !s.Authenticated || s.BearerToken == "" {
		return "", errs.ErrTokenNotFound
	}
	return s.BearerToken, nil
}

// Static is a fixed session, configured from the environment for the CLI and stdio server
type Static struct {
	Token  string
	Wallet string
}

func NewStatic(token, wallet string) *Static {
	if normalized, err := utils.NormalizeAddress(wallet); err == nil {
		wallet = normalized
	}
	return &Static{Token: token, Wallet: wallet}
}

func (s *Static) Session(ctx context.Context) (Session, error) {
	return Session{
		Authenticated: s.Token != "",
		BearerToken:   s.Token,
		WalletAddress: s.Wallet,
	}, nil
}

func (s *Static) ConnectedAddress(ctx context.Context) (string, error) {
	if s.Wallet == "" {
		return "", errs.Validation("wallet_address", "No wallet connected")
	}
	return s.Wallet, nil
}

// FromContext reads the user that the API middleware stored in the request context and
// falls back to another collaborator when there is none
type FromContext struct {
	Fallback Collaborator
}

func (f *FromContext) Session(ctx context.Context) (Session, error) {
	if user := utils.GetAuthenticatedUser(ctx); user != nil {
		return Session{
			Authenticated: user.Token != "",
			BearerToken:   user.Token,
			WalletAddress: user.WalletAddress,
			UserID:        user.Sub,
		}, nil
	}
	if f.Fallback != nil {
		return f.Fallback.Session(ctx)
	}
	return Session{}, nil
}

func (f *FromContext) ConnectedAddress(ctx context.Context) (string, error) {
	s, err := f.Session(ctx)
	if err != nil {
		return "", err
	}
	if s.WalletAddress == "" {
		return "", errs.Validation("wallet_address", "No wallet connected")
	}
	return s.WalletAddress, nil
}
