package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docblog/internal/client/client"
	"github.com/dmitrijs2005/docblog/internal/client/repositories/metadata"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

// fakeClient implements client.Client for the session service tests.
type fakeClient struct {
	client.Client

	LoginErr error
	gotPass  []byte
}

func (f *fakeClient) Register(_ context.Context, name, email string, password []byte) (*client.AuthResult, error) {
	f.gotPass = append([]byte(nil), password...)
	return &client.AuthResult{Token: "reg-token", User: client.User{ID: "u1", Name: name, Email: email}}, nil
}

func (f *fakeClient) Login(_ context.Context, email string, password []byte) (*client.AuthResult, error) {
	f.gotPass = append([]byte(nil), password...)
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return &client.AuthResult{Token: "login-token", User: client.User{ID: "u1", Email: email}}, nil
}

func newSession(t *testing.T, fc *fakeClient) SessionService {
	t.Helper()
	return NewSessionService(fc, metadata.NewSQLiteRepository(setupDB(t)))
}

func TestSession_LoggedOutByDefault(t *testing.T) {
	s := newSession(t, &fakeClient{})

	_, err := s.Token(context.Background())
	require.True(t, errors.Is(err, client.ErrNotLoggedIn))
	assert.Empty(t, s.Whoami(context.Background()))
}

func TestSession_RegisterPersistsToken(t *testing.T) {
	fc := &fakeClient{}
	s := newSession(t, fc)
	ctx := context.Background()

	pw := []byte("secret1")
	u, err := s.Register(ctx, "Alice", "alice@example.com", pw)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, []byte("secret1"), fc.gotPass)
	assert.Equal(t, make([]byte, len(pw)), pw, "password must be wiped")

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reg-token", tok)
	assert.Equal(t, "alice@example.com", s.Whoami(ctx))
}

func TestSession_LoginAndLogout(t *testing.T) {
	s := newSession(t, &fakeClient{})
	ctx := context.Background()

	_, err := s.Login(ctx, "alice@example.com", []byte("secret1"))
	require.NoError(t, err)

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "login-token", tok)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Token(ctx)
	require.True(t, errors.Is(err, client.ErrNotLoggedIn))
}

func TestSession_FailedLoginKeepsPreviousSession(t *testing.T) {
	fc := &fakeClient{}
	s := newSession(t, fc)
	ctx := context.Background()

	_, err := s.Register(ctx, "Alice", "alice@example.com", []byte("secret1"))
	require.NoError(t, err)

	fc.LoginErr = &client.APIError{Status: 401, Kind: "InvalidCredentialsError", Message: "invalid credentials"}
	_, err = s.Login(ctx, "alice@example.com", []byte("wrong"))
	require.True(t, errors.Is(err, client.ErrUnauthorized))

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reg-token", tok)
}
