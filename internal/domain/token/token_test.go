package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ntimofeev/auth-service/internal/config"
	"github.com/ntimofeev/auth-service/internal/domain/session"
)

// MockSessionStore is a mock implementation of session.Store
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Add(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, tokenID string) (*session.Session, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionStore) ListByUser(ctx context.Context, userID string) ([]session.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.Session), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockSessionStore) RevokeAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func testSigningKey(t *testing.T) *SigningKey {
	t.Helper()

	key, err := LoadSigningKey(
		&config.AuthConfig{Algorithm: "HS256"},
		&config.Environment{JWTSecret: "test-secret", Environment: config.EnvironmentDevelopment},
	)
	require.NoError(t, err)
	return key
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	validator := NewValidator(key, store, "auth-service", fixedClock(now.Add(time.Minute)))

	store.On("Add", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.UserID == "user-1" &&
			sess.Class == string(ClassAccess) &&
			sess.ExpiresAt.Equal(now.Add(time.Hour))
	})).Return(nil)

	signed, tokenID, err := issuer.Issue(context.Background(), IssueInput{
		UserID:    "user-1",
		Class:     ClassAccess,
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, tokenID)

	store.On("IsActive", mock.Anything, tokenID).Return(true, nil)

	claims, err := validator.Validate(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, tokenID, claims.TokenID)
	require.Equal(t, ClassAccess, claims.Class)
	require.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
	require.True(t, claims.IssuedAt.Equal(now))

	store.AssertExpectations(t)
}

func TestIssueDiscardsTokenOnStoreFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))

	store.On("Add", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	signed, tokenID, err := issuer.Issue(context.Background(), IssueInput{
		UserID: "user-1",
		Class:  ClassAccess,
	})
	require.Error(t, err)
	require.Empty(t, signed)
	require.Empty(t, tokenID)
}

func TestIssueUsesRefreshLifetime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))

	store.On("Add", mock.Anything, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.Class == string(ClassRefresh) &&
			sess.ExpiresAt.Equal(now.Add(7*24*time.Hour))
	})).Return(nil)

	_, _, err := issuer.Issue(context.Background(), IssueInput{
		UserID: "user-1",
		Class:  ClassRefresh,
	})
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestValidateExpiredBeforeStoreLookup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	// Two hours later the embedded exp has passed; the session record may
	// still physically exist but the store must never be consulted.
	validator := NewValidator(key, store, "auth-service", fixedClock(now.Add(2*time.Hour)))

	_, err = validator.Validate(context.Background(), signed)
	require.ErrorIs(t, err, ErrTokenExpired)
	store.AssertNotCalled(t, "IsActive", mock.Anything, mock.Anything)
}

func TestValidateRevoked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	signed, tokenID, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	validator := NewValidator(key, store, "auth-service", fixedClock(now.Add(time.Minute)))
	store.On("IsActive", mock.Anything, tokenID).Return(false, nil)

	_, err = validator.Validate(context.Background(), signed)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestValidateStoreFailureIsNotRevoked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	validator := NewValidator(key, store, "auth-service", fixedClock(now.Add(time.Minute)))
	store.On("IsActive", mock.Anything, mock.Anything).Return(false, errors.New("i/o timeout"))

	_, err = validator.Validate(context.Background(), signed)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTokenRevoked)
	require.NotErrorIs(t, err, ErrTokenInvalid)
	require.NotErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := new(MockSessionStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	key := testSigningKey(t)
	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))

	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	otherKey, err := LoadSigningKey(
		&config.AuthConfig{Algorithm: "HS256"},
		&config.Environment{JWTSecret: "other-secret", Environment: config.EnvironmentDevelopment},
	)
	require.NoError(t, err)

	validator := NewValidator(otherKey, store, "auth-service", fixedClock(now))

	_, err = validator.Validate(context.Background(), signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsForeignAlgorithm(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := new(MockSessionStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	// RS256-signed token presented to an HS256-configured validator
	rsaKey, err := LoadSigningKey(
		&config.AuthConfig{Algorithm: "RS256"},
		&config.Environment{Environment: config.EnvironmentDevelopment},
	)
	require.NoError(t, err)

	issuer := NewIssuer(rsaKey, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	validator := NewValidator(testSigningKey(t), store, "auth-service", fixedClock(now))

	_, err = validator.Validate(context.Background(), signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateClassMismatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassRefresh})
	require.NoError(t, err)

	validator := NewValidator(key, store, "auth-service", fixedClock(now))

	_, err = validator.Validate(context.Background(), signed, ExpectClass(ClassAccess))
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateIssuerMismatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)

	issuer := NewIssuer(key, store, "someone-else", time.Hour, 7*24*time.Hour, fixedClock(now))
	signed, _, err := issuer.Issue(context.Background(), IssueInput{UserID: "user-1", Class: ClassAccess})
	require.NoError(t, err)

	validator := NewValidator(key, store, "auth-service", fixedClock(now))

	_, err = validator.Validate(context.Background(), signed)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateGarbage(t *testing.T) {
	key := testSigningKey(t)
	store := new(MockSessionStore)
	validator := NewValidator(key, store, "auth-service", nil)

	_, err := validator.Validate(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExtraClaimsSurvive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key := testSigningKey(t)
	store := new(MockSessionStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)
	store.On("IsActive", mock.Anything, mock.Anything).Return(true, nil)

	issuer := NewIssuer(key, store, "auth-service", time.Hour, 7*24*time.Hour, fixedClock(now))
	signed, _, err := issuer.Issue(context.Background(), IssueInput{
		UserID: "user-1",
		Class:  ClassAccess,
		Extra:  map[string]any{"role": "admin"},
	})
	require.NoError(t, err)

	validator := NewValidator(key, store, "auth-service", fixedClock(now))
	claims, err := validator.Validate(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Extra["role"])
}

func TestParseClass(t *testing.T) {
	class, err := ParseClass("access")
	require.NoError(t, err)
	require.Equal(t, ClassAccess, class)

	class, err = ParseClass("refresh")
	require.NoError(t, err)
	require.Equal(t, ClassRefresh, class)

	_, err = ParseClass("session")
	require.Error(t, err)
}

func TestLoadSigningKeyRequiresSecret(t *testing.T) {
	_, err := LoadSigningKey(
		&config.AuthConfig{Algorithm: "HS256"},
		&config.Environment{Environment: config.EnvironmentDevelopment},
	)
	require.Error(t, err)

	_, err = LoadSigningKey(
		&config.AuthConfig{Algorithm: "ES999"},
		&config.Environment{Environment: config.EnvironmentDevelopment},
	)
	require.Error(t, err)
}
