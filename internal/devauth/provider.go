// Package devauth provides a config-driven credential exchange for local
// development, so the dashboard runs without the remote ERP API. One seeded
// account exists per role, all sharing the configured password.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/identity"
	"github.com/umarbinmusa/ERP-CLIENT-sub000/internal/shared"
)

type account struct {
	hash     []byte
	identity identity.Identity
}

// Provider implements the credential exchange against seeded accounts.
type Provider struct {
	accounts map[string]account
}

// NewProvider seeds one account per role with the given password.
func NewProvider(password string) (*Provider, error) {
	if password == "" {
		return nil, errors.New("devauth: password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("devauth: hash password: %w", err)
	}
	seeds := []identity.Identity{
		{ID: "dev-1", Username: "admin", FullName: "Dev Admin", Role: identity.RoleAdmin, Email: "admin@dev.local"},
		{ID: "dev-2", Username: "director", FullName: "Dev Director", Role: identity.RoleDirector, Email: "director@dev.local"},
		{ID: "dev-3", Username: "finance", FullName: "Dev Finance", Role: identity.RoleFinance, Email: "finance@dev.local"},
		{ID: "dev-4", Username: "manager", FullName: "Dev Manager", Role: identity.RoleManager, Email: "manager@dev.local"},
		{ID: "dev-5", Username: "laboratory", FullName: "Dev Analyst", Role: identity.RoleLaboratory, Email: "laboratory@dev.local"},
	}
	accounts := make(map[string]account, len(seeds))
	for _, s := range seeds {
		accounts[s.Username] = account{hash: hash, identity: s}
	}
	return &Provider{accounts: accounts}, nil
}

// Login validates the seeded credentials and returns a locally generated
// token. Failures look the same as a remote rejection.
func (p *Provider) Login(ctx context.Context, username, password string) (string, *identity.Identity, error) {
	acct, ok := p.accounts[username]
	if !ok {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	token, err := randomToken()
	if err != nil {
		return "", nil, err
	}
	ident := acct.identity
	return token, &ident, nil
}

// Logout discards the token; there is no remote party to notify.
func (p *Provider) Logout(ctx context.Context, token string) error {
	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "dev-" + base64.RawURLEncoding.EncodeToString(b), nil
}
