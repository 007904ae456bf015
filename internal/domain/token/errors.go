package token

import "errors"

var (
	// ErrTokenInvalid is returned for malformed tokens, wrong signatures,
	// wrong algorithms and unparseable claims
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned when the embedded expiry has passed
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenRevoked is returned when the signature and expiry check out
	// but the session store reports the token inactive
	ErrTokenRevoked = errors.New("token has been revoked")
)
