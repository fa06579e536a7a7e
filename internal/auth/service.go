// Package auth registers users, verifies credentials and issues and
// validates signed access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/phonebook/internal/models"
	"github.com/crucial707/phonebook/internal/repo"
)

var (
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrInvalidInput       = errors.New("invalid registration input")
)

// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
const maxPasswordBytes = 72

// UserStore is the credential store the service depends on. repo.UserRepo
// and repo.MemoryUserRepo implement it.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Config is built once at startup and never mutated.
type Config struct {
	Secret    []byte
	Algorithm string
	// AccessTokenTTL applies to tokens issued by Login.
	AccessTokenTTL time.Duration
	// DefaultTokenTTL applies to tokens issued by Register.
	DefaultTokenTTL time.Duration
}

type Service struct {
	store  UserStore
	cfg    Config
	method jwt.SigningMethod
	now    func() time.Time
	cost   int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// New returns a Service. Algorithm must name an HMAC signing method.
func New(store UserStore, cfg Config, opts ...Option) (*Service, error) {
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported algorithm %q", cfg.Algorithm)
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 30 * time.Minute
	}
	if cfg.DefaultTokenTTL <= 0 {
		cfg.DefaultTokenTTL = 15 * time.Minute
	}

	s := &Service{
		store:  store,
		cfg:    cfg,
		method: method,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates the user and returns it with a token valid for DefaultTokenTTL.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.User, Token, error) {
	if username == "" || email == "" || password == "" || len(password) > maxPasswordBytes {
		return models.User{}, Token{}, ErrInvalidInput
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return models.User{}, Token{}, ErrDuplicateIdentity
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, Token{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, Token{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, Token{}, ErrDuplicateIdentity
	}
	if err != nil {
		return models.User{}, Token{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(user.Email, s.cfg.DefaultTokenTTL)
	if err != nil {
		return models.User{}, Token{}, err
	}
	return user, token, nil
}

// Login checks the password and returns a token valid for AccessTokenTTL.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	return s.issue(user.Email, s.cfg.AccessTokenTTL)
}

// ValidateToken resolves a token to a known user.
func (s *Service) ValidateToken(ctx context.Context, token string) (models.User, error) {
	claims, err := s.parse(token)
	if err != nil || claims.Subject == "" {
		return models.User{}, ErrUnauthorized
	}

	user, err := s.store.GetByEmail(ctx, claims.Subject)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrUnauthorized
	}
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// Logout accepts any correctly signed, unexpired token. The subject is not
// resolved and nothing is invalidated; the token stays usable until it expires.
func (s *Service) Logout(_ context.Context, token string) error {
	_, err := s.Subject(token)
	return err
}

// Subject returns the email a token was issued for, after verifying it.
func (s *Service) Subject(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
