// Package token issues and verifies stateless session tokens.
//
// A token is an HS256-signed JWT carrying the subject (the user's email),
// issued-at and expiry. Verification needs only the signing key: there is no
// session table and no revocation list, so a token stays valid until it
// expires.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/clock"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 10 * time.Hour

// minKeyLen is the HS256 minimum key size in bytes.
const minKeyLen = 32

// Token is an issued session token.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs and verifies tokens. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	key    []byte
	ttl    time.Duration
	clock  clock.Clock
	logger *slog.Logger
	parser *jwt.Parser
}

// Option configures a Service.
type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService derives the signing key from secret. An empty secret is a
// configuration error.
func NewService(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	s := &Service{
		key:    DeriveKey(secret),
		ttl:    DefaultTTL,
		clock:  clock.Real(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl <= 0 {
		return nil, fmt.Errorf("token: ttl must be positive, got %s", s.ttl)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	return s, nil
}

// DeriveKey turns a configured secret into HMAC key material. A secret that
// is valid base64 is decoded, anything else is used as raw bytes. Key
// material shorter than 256 bits is replaced by its SHA-256 digest so that a
// typed passphrase still yields a full-length, deterministic key.
func DeriveKey(secret string) []byte {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}
	if len(key) < minKeyLen {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	return key
}

// TTL reports the lifetime given to new tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject, valid from now for the configured TTL.
func (s *Service) Issue(subject string) (Token, error) {
	if subject == "" {
		return Token{}, errors.New("token: empty subject")
	}
	now := s.clock.Now().Truncate(time.Second)
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Token{}, fmt.Errorf("token: signing: %w", err)
	}
	return Token{Value: signed, IssuedAt: now, ExpiresAt: expires}, nil
}

// Verify checks signature and expiry and returns the subject. Every failure
// is reported as apperr.ErrInvalidToken; the underlying cause is only logged.
func (s *Service) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		s.logger.Debug("token rejected", "cause", failureCause(err))
		return "", apperr.ErrInvalidToken.Wrap(err)
	}
	if claims.Subject == "" {
		s.logger.Debug("token rejected", "cause", "missing subject")
		return "", apperr.ErrInvalidToken
	}
	return claims.Subject, nil
}

func failureCause(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "invalid"
	}
}
