package token

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/ntimofeev/auth-service/internal/domain/session"
)

// registered claims handled explicitly; everything else lands in Claims.Extra
var wellKnownClaims = map[string]struct{}{
	"sub": {}, "jti": {}, "iss": {}, "aud": {},
	"iat": {}, "exp": {}, "nbf": {}, classClaim: {},
}

// ValidateOption customizes a single validation attempt
type ValidateOption func(*validateOptions)

type validateOptions struct {
	expectClass Class
}

// ExpectClass rejects tokens whose class claim differs from want. Used to
// keep refresh tokens from being replayed as access tokens and vice versa.
func ExpectClass(want Class) ValidateOption {
	return func(o *validateOptions) {
		o.expectClass = want
	}
}

// Validator decodes and verifies signed tokens and reconciles them with the
// session store's revocation state.
type Validator struct {
	key    *SigningKey
	store  session.Store
	issuer string
	now    func() time.Time
}

// NewValidator creates a Validator. A nil clock means time.Now.
func NewValidator(key *SigningKey, store session.Store, issuer string, clock func() time.Time) *Validator {
	if clock == nil {
		clock = time.Now
	}
	return &Validator{key: key, store: store, issuer: issuer, now: clock}
}

// Validate runs the checks in a fixed order: signature first (an unverified
// payload is never inspected), then the embedded expiry (cheap, avoids the
// store round-trip for trivially dead tokens), then revocation, which is
// the only check that needs I/O. Semantic failures map onto ErrTokenInvalid,
// ErrTokenExpired and ErrTokenRevoked; a store failure propagates as-is so
// callers can tell infrastructure trouble from a dead token.
func (v *Validator) Validate(ctx context.Context, signed string, opts ...ValidateOption) (*Claims, error) {
	var options validateOptions
	for _, opt := range opts {
		opt(&options)
	}

	// Signature and structure. WithKey pins the configured algorithm, so a
	// token carrying any other alg header fails here.
	tok, err := jwt.Parse([]byte(signed),
		jwt.WithKey(v.key.alg, v.key.verify),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	claims, err := v.claimsFromToken(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	if v.issuer != "" {
		iss, ok := tok.Issuer()
		if !ok || iss != v.issuer {
			return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
		}
	}

	if options.expectClass != "" && claims.Class != options.expectClass {
		return nil, fmt.Errorf("%w: expected %s token", ErrTokenInvalid, options.expectClass)
	}

	if !v.now().Before(claims.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	active, err := v.store.IsActive(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if !active {
		slog.Info("Rejected revoked token", "token_id", claims.TokenID, "user_id", claims.Subject)
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func (v *Validator) claimsFromToken(tok jwt.Token) (*Claims, error) {
	sub, ok := tok.Subject()
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing sub claim")
	}

	jti, ok := tok.JwtID()
	if !ok || jti == "" {
		return nil, fmt.Errorf("missing jti claim")
	}

	exp, ok := tok.Expiration()
	if !ok || exp.IsZero() {
		return nil, fmt.Errorf("missing exp claim")
	}

	iat, ok := tok.IssuedAt()
	if !ok {
		return nil, fmt.Errorf("missing iat claim")
	}

	var classStr string
	if err := tok.Get(classClaim, &classStr); err != nil {
		return nil, fmt.Errorf("missing %s claim", classClaim)
	}
	class, err := ParseClass(classStr)
	if err != nil {
		return nil, err
	}

	var extra map[string]any
	for _, name := range tok.Keys() {
		if _, known := wellKnownClaims[name]; known {
			continue
		}
		var value any
		if err := tok.Get(name, &value); err != nil {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[name] = value
	}

	return &Claims{
		Subject:   sub,
		TokenID:   jti,
		Class:     class,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Extra:     extra,
	}, nil
}
