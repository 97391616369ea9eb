// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/ctxutil"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/internal/platform/metrics"
	"github.com/lumenmarket/lumen/internal/platform/sec"
	"github.com/lumenmarket/lumen/pkg/pointer"
	"github.com/lumenmarket/lumen/pkg/uuidv7"
)

// Mailer delivers account emails out of band.
//
// The verification and reset tokens are handed to the mailer and never appear
// in an HTTP response body.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// genericResetMessage is returned for every password-reset request, whether
// or not the email exists. Anti-enumeration depends on the two paths being
// indistinguishable.
const genericResetMessage = "If an account with that email exists, a password reset link has been sent"

// Service orchestrates hashing, token issuance, lockout and persistence for
// every auth operation.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   *sec.Hasher
	tokens   *sec.TokenService
	mailer   Mailer
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	hasher *sec.Hasher,
	tokens *sec.TokenService,
	mailer Mailer,
	m *metrics.Metrics,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		metrics:  m,
		now:      time.Now,
	}
}

// # Inputs and Results

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ClientInfo describes the device a session belongs to, for the account's
// session list.
type ClientInfo struct {
	UserAgent string
	IP        string
}

// AuthResult is the outcome of register, login and refresh.
type AuthResult struct {
	User                      PublicUser
	Tokens                    *sec.TokenPair
	RequiresEmailVerification bool
}

// # Operations

// Register creates a new account and opens its first session.
//
// Validation happens entirely before storage is touched; WEAK_PASSWORD
// itemizes every violated rule in the error details.
func (s *Service) Register(ctx context.Context, input RegisterInput, client ClientInfo) (*AuthResult, error) {
	var missing []apperr.FieldError
	for field, value := range map[string]string{
		"email":      input.Email,
		"password":   input.Password,
		"first_name": input.FirstName,
		"last_name":  input.LastName,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, apperr.FieldError{Field: field, Message: "This field is required"})
		}
	}
	if len(missing) > 0 {
		return nil, apperr.New(http.StatusBadRequest, CodeMissingFields, "All fields are required", missing...)
	}

	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(http.StatusBadRequest, CodeInvalidEmail, "Invalid email format")
	}

	if violations := sec.ValidatePassword(input.Password); len(violations) > 0 {
		return nil, weakPasswordError(violations)
	}

	// Uniqueness pre-check gives the friendly 409; the unique index remains
	// the authority under concurrency.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.New(http.StatusConflict, CodeUserExists, "User with this email already exists")
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	verificationToken, err := sec.NewOpaqueToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		ID:                     uuidv7.New(),
		Email:                  email,
		PasswordHash:           hash,
		FirstName:              strings.TrimSpace(input.FirstName),
		LastName:               strings.TrimSpace(input.LastName),
		EmailVerified:          false,
		EmailVerificationToken: pointer.To(verificationToken),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.New(http.StatusConflict, CodeUserExists, "User with this email already exists")
		}
		return nil, apperr.Internal(err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, verificationToken); err != nil {
		// Registration stands even when delivery fails; the user can
		// request a fresh email later.
		ctxutil.GetLogger(ctx).WarnContext(ctx, "verification_email_failed", "user_id", user.ID, "error", err)
	}

	pair, err := s.openSession(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.record("register", "success")
	return &AuthResult{
		User:                      user.Public(),
		Tokens:                    pair,
		RequiresEmailVerification: true,
	}, nil
}

// Login authenticates an email/password pair.
//
// # Lockout
//
// A locked account is rejected before the password is checked, so lockout
// probing cannot be used to keep a hot bcrypt loop busy, and attempts are
// not re-incremented during the lock window.
func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.New(http.StatusBadRequest, CodeMissingFields, "Email and password are required")
	}

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(http.StatusBadRequest, CodeInvalidEmail, "Invalid email format")
	}

	now := s.now()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			s.record("login", "invalid")
			// Indistinguishable from a wrong password.
			return nil, invalidCredentials()
		}
		return nil, apperr.Internal(err)
	}

	if user.IsLocked(now) {
		s.record("login", "locked")
		return nil, lockedError(*user.LockedUntil, now)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		outcome, err := s.users.RecordLoginFailure(ctx, user.ID, now)
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				// A racing failure engaged the lock between our read and
				// this write.
				s.record("login", "locked")
				return nil, lockedError(now.Add(LockoutDuration), now)
			}
			return nil, apperr.Internal(err)
		}

		if outcome.Locked() {
			s.record("login", "locked")
			return nil, lockedError(*outcome.LockedUntil, now)
		}
		s.record("login", "invalid")
		return nil, invalidCredentials()
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, apperr.Internal(err)
	}
	user.LoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = pointer.To(now)

	pair, err := s.openSession(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}

	s.record("login", "success")
	return &AuthResult{
		User:                      user.Public(),
		Tokens:                    pair,
		RequiresEmailVerification: !user.EmailVerified,
	}, nil
}

// VerifyEmail consumes a verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*PublicUser, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.New(http.StatusBadRequest, CodeMissingFields, "Verification token is required")
	}

	user, err := s.users.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			s.record("verify_email", "invalid")
			return nil, apperr.New(http.StatusBadRequest, CodeInvalidToken, "Invalid or expired verification token")
		}
		return nil, apperr.Internal(err)
	}

	s.record("verify_email", "success")
	public := user.Public()
	return &public, nil
}

// RequestPasswordReset starts the reset flow.
//
// The response is identical whether or not the email exists; the token goes
// to the mailer, never to the client.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperr.New(http.StatusBadRequest, CodeMissingFields, "Email is required")
	}

	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.New(http.StatusBadRequest, CodeInvalidEmail, "Invalid email format")
	}

	token, err := sec.NewOpaqueToken()
	if err != nil {
		return "", apperr.Internal(err)
	}

	matched, err := s.users.SetResetToken(ctx, email, token, s.now().Add(ResetTokenTTL))
	if err != nil {
		return "", apperr.Internal(err)
	}

	if matched {
		if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "reset_email_failed", "error", err)
		}
	}

	s.record("request_reset", "accepted")
	return genericResetMessage, nil
}

// ResetPassword completes the reset flow.
//
// Password strength is checked before any storage access; the conditional
// write rejects consumed and expired tokens identically.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return apperr.New(http.StatusBadRequest, CodeMissingFields, "Reset token is required")
	}

	if violations := sec.ValidatePassword(newPassword); len(violations) > 0 {
		return weakPasswordError(violations)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	user, err := s.users.ConsumeResetToken(ctx, token, hash, s.now())
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			s.record("reset_password", "invalid")
			return apperr.New(http.StatusBadRequest, CodeInvalidToken, "Invalid or expired reset token")
		}
		return apperr.Internal(err)
	}

	// A stolen-password recovery must end every live session.
	if err := s.sessions.DeactivateAllForUser(ctx, user.ID); err != nil {
		return apperr.Internal(err)
	}

	s.record("reset_password", "success")
	return nil
}

// Refresh exchanges a live refresh token for a fresh pair.
//
// The token must pass signature and expiry checks AND match an active
// session row; the row is rotated to the new token's digest, so the old
// refresh token is dead the moment this returns.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, invalidRefresh()
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		s.record("refresh", "invalid")
		return nil, invalidRefresh()
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			s.record("refresh", "invalid")
			return nil, invalidRefresh()
		}
		return nil, apperr.Internal(err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, tokenFailure(err)
	}

	now := s.now()
	_, err = s.sessions.Rotate(ctx, sec.Digest(refreshToken), sec.Digest(pair.RefreshToken), now.Add(s.tokens.RefreshTTL()), now)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			s.record("refresh", "invalid")
			return nil, invalidRefresh()
		}
		return nil, apperr.Internal(err)
	}

	s.record("refresh", "success")
	return &AuthResult{
		User:                      user.Public(),
		Tokens:                    pair,
		RequiresEmailVerification: !user.EmailVerified,
	}, nil
}

// Logout deactivates the session holding the given refresh token.
// Calling it twice, or with a token that never had a session, is not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	if err := s.sessions.Deactivate(ctx, sec.Digest(refreshToken)); err != nil {
		return apperr.Internal(err)
	}

	s.record("logout", "success")
	return nil
}

// LogoutAll deactivates every session of the user. Idempotent.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}

	s.record("logout_all", "success")
	return nil
}

// ChangePassword replaces the password of an authenticated user.
//
// Every session is deactivated afterwards; clients log in again with the new
// credential.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperr.New(http.StatusBadRequest, CodeMissingFields, "Current and new password are required")
	}

	if violations := sec.ValidatePassword(newPassword); len(violations) > 0 {
		return weakPasswordError(violations)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.Unauthorized("Authentication required")
		}
		return apperr.Internal(err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		s.record("change_password", "invalid")
		return apperr.New(http.StatusUnauthorized, CodeInvalidCredentials, "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal(err)
	}

	if err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}

	s.record("change_password", "success")
	return nil
}

// UserExists reports whether the account behind a verified token is still
// present. The request guard calls this on every authenticated request.
func (s *Service) UserExists(ctx context.Context, userID string) (bool, error) {
	return s.users.Exists(ctx, userID)
}

// # Internals

// openSession issues a token pair and persists the session row keyed by the
// refresh token's digest.
func (s *Service) openSession(ctx context.Context, userID string, client ClientInfo) (*sec.TokenPair, error) {
	pair, err := s.tokens.IssuePair(userID)
	if err != nil {
		return nil, tokenFailure(err)
	}

	session := &Session{
		ID:          uuidv7.New(),
		UserID:      userID,
		TokenDigest: sec.Digest(pair.RefreshToken),
		UserAgent:   client.UserAgent,
		IP:          client.IP,
		ExpiresAt:   s.now().Add(s.tokens.RefreshTTL()),
		IsActive:    true,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperr.Internal(err)
	}

	return pair, nil
}

func (s *Service) record(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(operation, outcome)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials() error {
	return apperr.New(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials")
}

func invalidRefresh() error {
	return apperr.New(http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
}

func lockedError(lockedUntil, now time.Time) error {
	minutes := RemainingLockMinutes(lockedUntil, now)
	return apperr.Locked(CodeAccountLocked,
		fmt.Sprintf("Account is locked. Try again in %d minutes", minutes))
}

func weakPasswordError(violations []string) error {
	details := make([]apperr.FieldError, 0, len(violations))
	for _, violation := range violations {
		details = append(details, apperr.FieldError{Field: "password", Message: violation})
	}
	return apperr.New(http.StatusBadRequest, CodeWeakPassword, "Password does not meet requirements", details...)
}

// tokenFailure distinguishes a missing-secret misconfiguration from other
// signing failures. Both are 500s; only the config case gets the dedicated
// client message.
func tokenFailure(err error) error {
	if errors.Is(err, sec.ErrMissingSecret) {
		return apperr.ConfigError(err)
	}
	return apperr.Internal(err)
}
