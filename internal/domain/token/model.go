package token

import (
	"fmt"
	"time"
)

// classClaim is the private claim carrying the token class
const classClaim = "type"

// Class distinguishes short-lived access tokens from long-lived refresh tokens
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// ParseClass converts a claim value into a Class
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case ClassAccess, ClassRefresh:
		return Class(s), nil
	default:
		return "", fmt.Errorf("unknown token class %q", s)
	}
}

// Claims is the decoded, verified payload of a signed token. It is built by
// the issuer at mint time and reconstructed by the validator on every
// decode; it is never persisted on its own.
type Claims struct {
	Subject   string
	TokenID   string
	Class     Class
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}
