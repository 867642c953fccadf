package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/logging"
	"github.com/dmitrijs2005/docblog/internal/server/auth"
	"github.com/dmitrijs2005/docblog/internal/server/config"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"github.com/dmitrijs2005/docblog/internal/server/repositories/repomanager"
)

const (
	minPasswordLength = 6
	// maxPasswordBytes is the bcrypt input limit.
	maxPasswordBytes = 72
)

// UserService provides authentication-related operations:
// - Register: create accounts
// - Login: verify credentials
// - IssueToken / Authenticate: mint and check bearer tokens
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.Issuer
	bcryptCost  int
	opTimeout   time.Duration
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		tokens:      auth.NewIssuer(cfg.SecretKey, cfg.TokenValidity()),
		bcryptCost:  cfg.BcryptCost,
		opTimeout:   cfg.StoreOperationTimeout,
		logger:      logger.With("module", "users"),
	}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return at > 0 && strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

// Register validates the input, hashes the password and stores the account.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
	case !validEmail(email):
		return nil, fmt.Errorf("%w: a valid email is required", common.ErrValidation)
	case utf8.RuneCountInString(password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	case len(password) > maxPasswordBytes:
		return nil, fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, maxPasswordBytes)
	}

	plain := []byte(password)
	hash, err := auth.HashPassword(plain, s.bcryptCost)
	common.WipeByteArray(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	u, err := s.repomanager.Users().Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login returns the account for email if password matches. An unknown
// email and a wrong password fail with the same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	plain := []byte(password)
	defer common.WipeByteArray(plain)

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.BurnCompare(plain)
			return nil, common.ErrInvalidCredentials
		}
		return nil, mapStoreError(err)
	}

	if !auth.CheckPassword(user.PasswordHash, plain) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// GetByID loads the account behind an authenticated request.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, s.opTimeout)
	defer cancel()

	u, err := s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return u, nil
}

// IssueToken mints a bearer token for userID.
func (s *UserService) IssueToken(userID string) (string, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		if errors.Is(err, common.ErrMissingSecret) {
			return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		return "", err
	}
	return tok, nil
}

// Authenticate resolves a bearer token to the user id it was issued for.
func (s *UserService) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}
