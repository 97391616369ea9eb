// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/pkg/uuidv7"
)

// Sentinel errors for token verification.
//
// Callers branch on these to distinguish "log in again" (expired) from
// "tampered or malformed" (invalid), which map to different client messages.
var (
	// ErrTokenExpired indicates the token was well-formed and correctly signed
	// but its expiry has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid indicates the token failed signature verification or
	// structural parsing.
	ErrTokenInvalid = errors.New("sec: token invalid")

	// ErrMissingSecret indicates the service was constructed without a
	// signing secret. Startup should treat this as a fatal misconfiguration.
	ErrMissingSecret = errors.New("sec: signing secret not configured")
)

// AuthClaims is the JWT payload for both access and refresh tokens.
//
// UserID travels in a private "uid" claim; everything else rides the
// registered claim set. The jti is a fresh UUIDv7 per token, so two tokens
// issued for the same user in the same second still differ.
type AuthClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenPair bundles the two tokens issued at login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// RefreshID is the jti of the refresh token. Session storage keys the
	// server-side session row by a digest of the refresh token; the jti is
	// carried for audit logging.
	RefreshID string
	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time
}

// TokenService signs and verifies HS256 JWTs with separate secrets for the
// access and refresh families.
//
// # Dual Secrets
//
// A captured access token can never be replayed as a refresh token (and vice
// versa) because each family verifies against its own secret.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService constructs a [TokenService].
//
// Both secrets are required; an empty secret returns [ErrMissingSecret]
// rather than silently signing with a zero-length key.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssuePair mints a fresh access/refresh token pair for the given user.
func (s *TokenService) IssuePair(userID string) (*TokenPair, error) {
	now := s.now()
	accessExpiry := now.Add(s.accessTTL)

	access, err := s.sign(userID, uuidv7.New(), now, accessExpiry, s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	refreshID := uuidv7.New()
	refresh, err := s.sign(userID, refreshID, now, now.Add(s.refreshTTL), s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshID:    refreshID,
		ExpiresAt:    accessExpiry,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (*AuthClaims, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *TokenService) VerifyRefresh(token string) (*AuthClaims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(userID, jti string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	claims := AuthClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AuthIssuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(tokenString string, secret []byte) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Reject anything but HMAC to block alg-substitution attacks.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(constants.AuthIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
