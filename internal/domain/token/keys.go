package token

import (
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/ntimofeev/auth-service/internal/config"
)

// SigningKey bundles the configured algorithm with its key material.
// The validator only ever accepts this algorithm, so a token carrying a
// different alg header fails verification outright.
type SigningKey struct {
	alg     jwa.SignatureAlgorithm
	signKey jwk.Key
	verify  jwk.Key
}

// LoadSigningKey builds a SigningKey from the configured algorithm and the
// key material supplied through the environment. HS256 uses the shared
// secret; RS256 parses the PEM private key (generated on the fly in
// development when absent).
func LoadSigningKey(cfg *config.AuthConfig, env *config.Environment) (*SigningKey, error) {
	switch cfg.Algorithm {
	case "HS256":
		if env.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required for HS256")
		}

		key, err := jwk.Import([]byte(env.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to import secret: %w", err)
		}

		return &SigningKey{alg: jwa.HS256(), signKey: key, verify: key}, nil

	case "RS256":
		rsaKey, err := config.LoadRSAPrivateKey(env.PrivateKey, env.Environment)
		if err != nil {
			return nil, err
		}

		priv, err := jwk.Import(rsaKey)
		if err != nil {
			return nil, fmt.Errorf("failed to import private key: %w", err)
		}

		pub, err := jwk.PublicKeyOf(priv)
		if err != nil {
			return nil, fmt.Errorf("failed to derive public key: %w", err)
		}

		return &SigningKey{alg: jwa.RS256(), signKey: priv, verify: pub}, nil

	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
}

// Algorithm returns the configured signature algorithm
func (k *SigningKey) Algorithm() jwa.SignatureAlgorithm {
	return k.alg
}
