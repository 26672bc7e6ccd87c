// Package token signs and decodes the time-limited callback tokens that
// carry recipient identity through the asynchronous ingestion flow. The
// payload is an arbitrary key/value map with an embedded expiry; decoding
// after expiry is a terminal condition, never retried.
package token

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

// DefaultMaxAge bounds how long a callback token stays decodable. Sized to
// exceed the ticket TTL so the token never expires before the ticket does.
const DefaultMaxAge = 20 * time.Minute

type Config struct {
	// Secret signs and verifies tokens. Required.
	Secret string `yaml:"secret" envconfig:"TOKEN_SECRET"`

	// MaxAge is the token lifetime
	// Default: 20m
	MaxAge time.Duration `yaml:"max_age" envconfig:"TOKEN_MAX_AGE"`
}

// NewConfig builds a Config from the environment.
func NewConfig() Config {
	cfg := Config{Secret: os.Getenv("TOKEN_SECRET")}
	if v := os.Getenv("TOKEN_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.MaxAge = d
		}
	}
	return cfg
}

// Signer issues and verifies HS256-signed tokens.
type Signer struct {
	secret []byte
	maxAge time.Duration
}

func NewSigner(cfg Config) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, apperr.New(apperr.KindInternal, "token secret is not configured")
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	return &Signer{secret: []byte(cfg.Secret), maxAge: cfg.MaxAge}, nil
}

// Sign embeds the payload into a signed token with an expiry. Reserved
// claim keys (exp, iat) are set here and must not appear in the payload.
func (s *Signer) Sign(payload map[string]any) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"exp": now.Add(s.maxAge).Unix(),
		"iat": now.Unix(),
	}
	for k, v := range payload {
		if k == "exp" || k == "iat" {
			return "", apperr.Newf(apperr.KindInvalid, "payload key %q is reserved", k)
		}
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "signing token", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the payload claims.
// An expired or malformed token yields a KindTokenExpired error.
func (s *Signer) Decode(tokenString string) (map[string]any, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.KindTokenExpired, "callback token expired", err)
		}
		return nil, apperr.Wrap(apperr.KindTokenExpired, "callback token invalid", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.New(apperr.KindTokenExpired, "callback token has unexpected claims")
	}

	payload := make(map[string]any, len(claims))
	for k, v := range claims {
		if k == "exp" || k == "iat" {
			continue
		}
		payload[k] = v
	}
	return payload, nil
}
