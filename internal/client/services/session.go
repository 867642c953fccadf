// Package services contains application services for blogctl. The session
// service logs in against the API and keeps the bearer token in the local
// metadata table so later runs stay logged in.
package services

import (
	"context"

	"github.com/dmitrijs2005/docblog/internal/client/client"
	"github.com/dmitrijs2005/docblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docblog/internal/common"
)

const (
	keyToken = "token"
	keyEmail = "email"
)

// SessionService defines authentication operations for the CLI.
//
// Contract:
//   - Register / Login: authenticate against the server and persist the token.
//   - Logout: forget the saved token.
//   - Token: the saved token, or client.ErrNotLoggedIn.
//   - Whoami: the email of the saved session, "" when logged out.
type SessionService interface {
	Register(ctx context.Context, name, email string, password []byte) (*client.User, error)
	Login(ctx context.Context, email string, password []byte) (*client.User, error)
	Logout(ctx context.Context) error
	Token(ctx context.Context) (string, error)
	Whoami(ctx context.Context) string
}

type sessionService struct {
	api  client.Client
	meta metadata.Repository
}

func NewSessionService(api client.Client, meta metadata.Repository) SessionService {
	return &sessionService{api: api, meta: meta}
}

func (s *sessionService) Register(ctx context.Context, name, email string, password []byte) (*client.User, error) {
	defer common.WipeByteArray(password)

	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*client.User, error) {
	defer common.WipeByteArray(password)

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *sessionService) save(ctx context.Context, res *client.AuthResult) error {
	if err := s.meta.Set(ctx, keyToken, []byte(res.Token)); err != nil {
		return err
	}
	return s.meta.Set(ctx, keyEmail, []byte(res.User.Email))
}

func (s *sessionService) Logout(ctx context.Context) error {
	return s.meta.Clear(ctx)
}

func (s *sessionService) Token(ctx context.Context) (string, error) {
	tok, err := s.meta.Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	if len(tok) == 0 {
		return "", client.ErrNotLoggedIn
	}
	return string(tok), nil
}

func (s *sessionService) Whoami(ctx context.Context) string {
	email, err := s.meta.Get(ctx, keyEmail)
	if err != nil {
		return ""
	}
	return string(email)
}
