package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ntimofeev/auth-service/internal/domain/session"
	"github.com/ntimofeev/auth-service/internal/domain/token"
	"github.com/ntimofeev/auth-service/internal/domain/user"
)

var (
	// ErrInvalidCredentials is returned when the username or password is wrong
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserBlocked is returned when a blocked account tries to authenticate
	ErrUserBlocked = errors.New("user account is blocked")
)

// TokenPair bundles a freshly issued access and refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ClientInfo carries per-request metadata recorded with each session
type ClientInfo struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

// Service wires credential checks to token issuance and revocation
type Service struct {
	users     user.Repository
	sessions  session.Store
	issuer    *token.Issuer
	validator *token.Validator
}

// NewService creates a new auth service
func NewService(users user.Repository, sessions session.Store, issuer *token.Issuer, validator *token.Validator) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		validator: validator,
	}
}

// Login authenticates the credentials and issues a token pair. Each token
// gets its own session record with the client metadata attached.
func (s *Service) Login(ctx context.Context, username, password string, client ClientInfo) (*TokenPair, *user.User, error) {
	u, err := s.users.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.users.VerifyPassword(u, password) {
		return nil, nil, ErrInvalidCredentials
	}

	if u.Blocked() {
		return nil, nil, ErrUserBlocked
	}

	pair, err := s.issuePair(ctx, u.ID.String(), client)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("User logged in", "user_id", u.ID, "username", u.Username)
	return pair, u, nil
}

// Refresh validates a refresh token, revokes its session and issues a new
// pair. The old refresh token is dead after this call even if the client
// drops the response.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*TokenPair, error) {
	claims, err := s.validator.Validate(ctx, refreshToken, token.ExpectClass(token.ClassRefresh))
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Revoke(ctx, claims.TokenID); err != nil {
		return nil, fmt.Errorf("failed to retire refresh token: %w", err)
	}

	pair, err := s.issuePair(ctx, claims.Subject, client)
	if err != nil {
		return nil, err
	}

	slog.Info("Token pair refreshed", "user_id", claims.Subject, "old_token_id", claims.TokenID)
	return pair, nil
}

// Logout revokes the session behind a single token id
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Revoke(ctx, tokenID); err != nil {
		return err
	}
	slog.Info("Session revoked", "token_id", tokenID)
	return nil
}

// LogoutAll revokes every session belonging to the user
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}
	slog.Info("All sessions revoked", "user_id", userID)
	return nil
}

// Sessions enumerates the user's active sessions
func (s *Service) Sessions(ctx context.Context, userID string) ([]session.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// RevokeSession revokes one session by token id, reporting
// session.ErrSessionNotFound when no record exists. Unlike Logout this is a
// direct management operation, so absence is an error the caller sees.
func (s *Service) RevokeSession(ctx context.Context, userID, tokenID string) error {
	sess, err := s.sessions.Get(ctx, tokenID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return session.ErrSessionNotFound
	}
	return s.sessions.Revoke(ctx, tokenID)
}

// BlockUser marks the account blocked and revokes all of its sessions
func (s *Service) BlockUser(ctx context.Context, users user.Service, userID string) (*user.User, error) {
	u, err := users.Block(userID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke sessions of blocked user: %w", err)
	}

	slog.Info("User blocked", "user_id", userID)
	return u, nil
}

func (s *Service) issuePair(ctx context.Context, userID string, client ClientInfo) (*TokenPair, error) {
	access, _, err := s.issuer.Issue(ctx, token.IssueInput{
		UserID:     userID,
		Class:      token.ClassAccess,
		DeviceInfo: client.DeviceInfo,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	refresh, _, err := s.issuer.Issue(ctx, token.IssueInput{
		UserID:     userID,
		Class:      token.ClassRefresh,
		DeviceInfo: client.DeviceInfo,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}
