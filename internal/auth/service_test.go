package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crucial707/phonebook/internal/models"
	"github.com/crucial707/phonebook/internal/repo"
)

var testSecret = []byte("test-secret")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, store UserStore, clock *fakeClock) *Service {
	t.Helper()
	opts := []Option{WithBcryptCost(bcrypt.MinCost)}
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	s, err := New(store, Config{
		Secret:          testSecret,
		Algorithm:       "HS256",
		AccessTokenTTL:  30 * time.Minute,
		DefaultTokenTTL: 15 * time.Minute,
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsNonHMAC(t *testing.T) {
	_, err := New(repo.NewMemoryUserRepo(), Config{Secret: testSecret, Algorithm: "RS256"})
	assert.Error(t, err)

	_, err = New(repo.NewMemoryUserRepo(), Config{Secret: nil, Algorithm: "HS256"})
	assert.Error(t, err)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryUserRepo()
	s := newTestService(t, store, nil)

	user, tok, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, TokenTypeBearer, tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)

	stored, err := store.GetByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash, "password must not be stored in plain form")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))

	loginTok, err := s.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	sub, err := s.Subject(loginTok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", sub)
}

func TestRegister_TokenLifetimes(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestService(t, repo.NewMemoryUserRepo(), clock)

	_, regTok, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(15*time.Minute), regTok.ExpiresAt)

	loginTok, err := s.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(30*time.Minute), loginTok.ExpiresAt)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)

	_, _, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	_, _, err = s.Register(ctx, "someone-else", "alice@x.com", "different")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

// raceStore reports no user on lookup but a unique violation on insert.
type raceStore struct{}

func (raceStore) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, repo.ErrNotFound
}

func (raceStore) Create(context.Context, models.User) (models.User, error) {
	return models.User{}, repo.ErrDuplicate
}

func TestRegister_DuplicateFromStoreConstraint(t *testing.T) {
	s := newTestService(t, raceStore{}, nil)
	_, _, err := s.Register(context.Background(), "alice", "alice@x.com", "pw1")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegister_MissingFields(t *testing.T) {
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)
	_, _, err := s.Register(context.Background(), "alice", "", "pw1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)
	_, _, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	_, errWrong := s.Login(ctx, "alice@x.com", "wrong")
	_, errUnknown := s.Login(ctx, "nobody@x.com", "pw1")
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

type failingStore struct{}

func (failingStore) Create(context.Context, models.User) (models.User, error) {
	return models.User{}, errors.New("connection reset")
}

func (failingStore) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("connection reset")
}

func TestLogin_StoreFailureIsNotCredentialError(t *testing.T) {
	s := newTestService(t, failingStore{}, nil)
	_, err := s.Login(context.Background(), "alice@x.com", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)
	_, tok, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	user, err := s.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)
}

func TestValidateToken_Expired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestService(t, repo.NewMemoryUserRepo(), clock)
	_, _, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)
	tok, err := s.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)

	clock.t = clock.t.Add(29 * time.Minute)
	_, err = s.ValidateToken(ctx, tok.AccessToken)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = s.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, s.Logout(ctx, tok.AccessToken), ErrUnauthorized)
}

func TestValidateToken_BadSignatureAndAlgorithm(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)
	_, _, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	otherAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = s.ValidateToken(ctx, otherAlg)
	assert.ErrorIs(t, err, ErrUnauthorized)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "alice@x.com",
	}}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = s.ValidateToken(ctx, noExp)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateToken_UnknownSubject(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)

	tok, err := s.issue("ghost@x.com", time.Minute)
	require.NoError(t, err)

	_, err = s.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Logout does not resolve the subject.
	assert.NoError(t, s.Logout(ctx, tok.AccessToken))
}

func TestLogout_DoesNotInvalidate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, repo.NewMemoryUserRepo(), nil)
	_, tok, err := s.Register(ctx, "alice", "alice@x.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, tok.AccessToken))
	_, err = s.ValidateToken(ctx, tok.AccessToken)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Logout(ctx, "garbage"), ErrUnauthorized)
}

func TestLogout_SignatureAndExpiryOnly(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestService(t, repo.NewMemoryUserRepo(), clock)

	// Correctly signed, but nobody registered this subject.
	tok, err := s.issue("ghost@x.com", 30*time.Minute)
	require.NoError(t, err)

	clock.t = clock.t.Add(29 * time.Minute)
	assert.NoError(t, s.Logout(ctx, tok.AccessToken))
	_, err = s.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	clock.t = clock.t.Add(2 * time.Minute)
	assert.ErrorIs(t, s.Logout(ctx, tok.AccessToken), ErrUnauthorized)
	_, err = s.ValidateToken(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
