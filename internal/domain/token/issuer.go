package token

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ntimofeev/auth-service/internal/domain/session"
)

// IssueInput holds the parameters for minting a token
type IssueInput struct {
	UserID     string
	Class      Class
	DeviceInfo string
	IPAddress  string
	UserAgent  string
	Extra      map[string]any
}

// Issuer mints signed tokens and records a session for each one
type Issuer struct {
	key        *SigningKey
	store      session.Store
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer. A nil clock means time.Now.
func NewIssuer(key *SigningKey, store session.Store, issuer string, accessTTL, refreshTTL time.Duration, clock func() time.Time) *Issuer {
	if clock == nil {
		clock = time.Now
	}
	return &Issuer{
		key:        key,
		store:      store,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        clock,
	}
}

// Lifetime returns the configured lifetime for a token class
func (i *Issuer) Lifetime(class Class) time.Duration {
	if class == ClassRefresh {
		return i.refreshTTL
	}
	return i.accessTTL
}

// Issue mints a signed token with a fresh token id and persists the paired
// session record. Exactly one record is written per call. When the store
// write fails the signed token is discarded and never returned, so no token
// can circulate without a revocation record behind it.
func (i *Issuer) Issue(ctx context.Context, in IssueInput) (string, string, error) {
	if in.UserID == "" {
		return "", "", fmt.Errorf("user id is required")
	}

	tokenID := uuid.NewString()
	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(i.Lifetime(in.Class))

	builder := jwt.NewBuilder().
		Subject(in.UserID).
		JwtID(tokenID).
		Issuer(i.issuer).
		IssuedAt(issuedAt).
		Expiration(expiresAt).
		Claim(classClaim, string(in.Class))

	for name, value := range in.Extra {
		builder = builder.Claim(name, value)
	}

	tok, err := builder.Build()
	if err != nil {
		return "", "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(i.key.alg, i.key.signKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	sess := &session.Session{
		TokenID:    tokenID,
		UserID:     in.UserID,
		Class:      string(in.Class),
		CreatedAt:  issuedAt,
		ExpiresAt:  expiresAt,
		DeviceInfo: in.DeviceInfo,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	}

	if err := i.store.Add(ctx, sess); err != nil {
		return "", "", fmt.Errorf("failed to record session: %w", err)
	}

	return string(signed), tokenID, nil
}
