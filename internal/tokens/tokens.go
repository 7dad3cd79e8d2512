// Package tokens issues and resolves stateless HS256 bearer tokens.
//
// A token is valid as long as its signature checks out and it has not
// expired. There is no server-side session and no revocation.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FallbackTTL applies when Issue is called without a positive ttl.
const FallbackTTL = 15 * time.Minute

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrUnknownSubject = errors.New("token has no subject")
	ErrEmptySubject   = errors.New("subject is required")
)

type Service interface {
	// Issue signs a token for subject that expires after ttl.
	// A zero or negative ttl is replaced with FallbackTTL.
	Issue(subject string, ttl time.Duration) (string, time.Time, error)

	// Resolve returns the subject of a valid token. It fails with
	// ErrInvalidToken on a bad signature, malformed payload or expiry,
	// and with ErrUnknownSubject when the subject claim is missing.
	Resolve(token string) (string, error)
}

type Option func(*serviceImpl)

// WithClock replaces time.Now for both issuing and resolving.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		s.now = now
	}
}

type serviceImpl struct {
	issuer     string
	signingKey []byte
	now        func() time.Time
}

func NewService(issuer string, signingKey []byte, opts ...Option) Service {
	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	s := &serviceImpl{
		issuer:     issuer,
		signingKey: key,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrEmptySubject
	}
	if ttl <= 0 {
		ttl = FallbackTTL
	}

	tokenUUID, err := uuid.NewRandom()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate id: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        tokenUUID.String(),
		Issuer:    s.issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *serviceImpl) Resolve(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	t, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		opts...,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrUnknownSubject
	}
	return claims.Subject, nil
}
