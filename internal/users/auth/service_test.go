// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/dberr"
	"github.com/lumenmarket/lumen/internal/platform/sec"
)

// # In-memory fakes
//
// The fakes mirror the conditional-write semantics of the PostgreSQL
// repositories: token consumption and session rotation only succeed when the
// row is still in the expected state.

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*User
	calls int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*User)}
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, dberr.ErrNotFound
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (r *memoryUserRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	_, ok := r.users[id]
	return ok, nil
}

func (r *memoryUserRepo) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) RecordLoginFailure(_ context.Context, id string, now time.Time) (FailureOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	user, ok := r.users[id]
	if !ok || (user.LockedUntil != nil && user.LockedUntil.After(now)) {
		return FailureOutcome{}, dberr.ErrNotFound
	}
	outcome := ApplyFailure(user.LoginAttempts, now)
	user.LoginAttempts = outcome.Attempts
	user.LockedUntil = outcome.LockedUntil
	return outcome, nil
}

func (r *memoryUserRepo) RecordLoginSuccess(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if user, ok := r.users[id]; ok {
		user.LoginAttempts = 0
		user.LockedUntil = nil
		stamp := at
		user.LastLogin = &stamp
	}
	return nil
}

func (r *memoryUserRepo) ConsumeVerificationToken(_ context.Context, token string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, user := range r.users {
		if user.EmailVerificationToken != nil && *user.EmailVerificationToken == token {
			user.EmailVerified = true
			user.EmailVerificationToken = nil
			clone := *user
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (r *memoryUserRepo) SetResetToken(_ context.Context, email, token string, expires time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, user := range r.users {
		if user.Email == email {
			t, e := token, expires
			user.PasswordResetToken = &t
			user.PasswordResetExpires = &e
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepo) ConsumeResetToken(_ context.Context, token, newHash string, now time.Time) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, user := range r.users {
		if user.PasswordResetToken != nil && *user.PasswordResetToken == token &&
			user.PasswordResetExpires != nil && user.PasswordResetExpires.After(now) {
			user.PasswordHash = newHash
			user.PasswordResetToken = nil
			user.PasswordResetExpires = nil
			user.LoginAttempts = 0
			user.LockedUntil = nil
			clone := *user
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if user, ok := r.users[id]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, updated *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if user, ok := r.users[updated.ID]; ok {
		user.FirstName = updated.FirstName
		user.LastName = updated.LastName
		user.Phone = updated.Phone
	}
	return nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*Session // keyed by digest
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*Session)}
}

func (r *memorySessionRepo) Create(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.TokenDigest] = &clone
	return nil
}

func (r *memorySessionRepo) Rotate(_ context.Context, oldDigest, newDigest string, expires, now time.Time) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[oldDigest]
	if !ok || !session.IsActive || !session.ExpiresAt.After(now) {
		return nil, dberr.ErrNotFound
	}
	delete(r.sessions, oldDigest)
	session.TokenDigest = newDigest
	session.ExpiresAt = expires
	r.sessions[newDigest] = session
	clone := *session
	return &clone, nil
}

func (r *memorySessionRepo) Deactivate(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[digest]; ok {
		session.IsActive = false
	}
	return nil
}

func (r *memorySessionRepo) DeactivateByID(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.ID == sessionID && session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (r *memorySessionRepo) DeactivateAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (r *memorySessionRepo) ListActiveForUser(_ context.Context, userID string, now time.Time) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive && session.ExpiresAt.After(now) {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (r *memorySessionRepo) activeCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsActive {
			count++
		}
	}
	return count
}

type captureMailer struct {
	mu                sync.Mutex
	verificationToken string
	resetToken        string
}

func (m *captureMailer) SendVerification(_ context.Context, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verificationToken = token
	return nil
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetToken = token
	return nil
}

// # Test harness

type testEnv struct {
	service  *Service
	users    *memoryUserRepo
	sessions *memorySessionRepo
	mailer   *captureMailer
	clock    *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := sec.NewHasher(4)
	require.NoError(t, err)

	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	users := newMemoryUserRepo()
	sessions := newMemorySessionRepo()
	mailer := &captureMailer{}

	service := NewService(users, sessions, hasher, tokens, mailer, nil)

	now := time.Now()
	service.now = func() time.Time { return now }

	return &testEnv{
		service:  service,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		clock:    &now,
	}
}

func (env *testEnv) advance(d time.Duration) {
	*env.clock = env.clock.Add(d)
}

const (
	testEmail    = "shopper@example.com"
	testPassword = `Str0ng!Pass`
)

func registerTestUser(t *testing.T, env *testEnv) *AuthResult {
	t.Helper()
	result, err := env.service.Register(context.Background(), RegisterInput{
		Email:     testEmail,
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, ClientInfo{UserAgent: "test-agent", IP: "10.0.0.1"})
	require.NoError(t, err)
	return result
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	return ae.Code
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae)
	return ae.HTTPStatus
}

// # Register

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success opens a session and flags verification", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		result := registerTestUser(t, env)

		assert.Equal(t, testEmail, result.User.Email)
		assert.False(t, result.User.EmailVerified)
		assert.True(t, result.RequiresEmailVerification)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.Equal(t, 1, env.sessions.activeCount(result.User.ID))
		assert.NotEmpty(t, env.mailer.verificationToken, "verification token must go to the mailer")
	})

	t.Run("email is normalized to lowercase", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		result, err := env.service.Register(context.Background(), RegisterInput{
			Email:     "  Shopper@Example.COM ",
			Password:  testPassword,
			FirstName: "Ada",
			LastName:  "Lovelace",
		}, ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, testEmail, result.User.Email)
	})

	t.Run("missing fields are itemized", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.service.Register(context.Background(), RegisterInput{Email: testEmail}, ClientInfo{})
		require.Error(t, err)
		assert.Equal(t, CodeMissingFields, appCode(t, err))
		assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
		assert.Len(t, apperr.As(err).Details, 3)
	})

	t.Run("invalid email fails before storage", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.service.Register(context.Background(), RegisterInput{
			Email: "not-an-email", Password: testPassword, FirstName: "A", LastName: "B",
		}, ClientInfo{})
		assert.Equal(t, CodeInvalidEmail, appCode(t, err))
		assert.Zero(t, env.users.calls)
	})

	t.Run("weak password lists every violated rule", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.service.Register(context.Background(), RegisterInput{
			Email: testEmail, Password: "weak", FirstName: "A", LastName: "B",
		}, ClientInfo{})
		require.Error(t, err)
		assert.Equal(t, CodeWeakPassword, appCode(t, err))
		// "weak": too short, no uppercase, no digit, no special character.
		assert.Len(t, apperr.As(err).Details, 4)
		assert.Zero(t, env.users.calls, "validation must precede storage access")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)

		_, err := env.service.Register(context.Background(), RegisterInput{
			Email: testEmail, Password: testPassword, FirstName: "A", LastName: "B",
		}, ClientInfo{})
		assert.Equal(t, CodeUserExists, appCode(t, err))
		assert.Equal(t, http.StatusConflict, appStatus(t, err))
	})
}

// # Login

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("correct credentials reset attempts and issue fresh pairs", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		// Seed some failed attempts first.
		_, _ = env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})
		_, _ = env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})

		first, err := env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		require.NoError(t, err)
		second, err := env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		require.NoError(t, err)

		stored, err := env.users.FindByID(context.Background(), registered.User.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.LoginAttempts)
		assert.NotNil(t, stored.LastLogin)

		assert.NotEqual(t, first.Tokens.AccessToken, second.Tokens.AccessToken)
		assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)

		_, unknownErr := env.service.Login(context.Background(), "ghost@example.com", testPassword, ClientInfo{})
		_, wrongErr := env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})

		assert.Equal(t, appCode(t, unknownErr), appCode(t, wrongErr))
		assert.Equal(t, apperr.As(unknownErr).Message, apperr.As(wrongErr).Message)
	})

	t.Run("unverified email flags but does not block", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)

		result, err := env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		require.NoError(t, err)
		assert.True(t, result.RequiresEmailVerification)
	})

	t.Run("five failures lock for thirty minutes", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		for i := 0; i < LockoutThreshold-1; i++ {
			_, err := env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})
			assert.Equal(t, CodeInvalidCredentials, appCode(t, err))
		}

		// Fifth failure crosses the threshold.
		_, err := env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})
		assert.Equal(t, CodeAccountLocked, appCode(t, err))
		assert.Equal(t, http.StatusLocked, appStatus(t, err))

		// Sixth attempt with the CORRECT password still fails and does not
		// re-increment the counter.
		_, err = env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		assert.Equal(t, CodeAccountLocked, appCode(t, err))
		assert.Contains(t, apperr.As(err).Message, "30 minutes")

		stored, err2 := env.users.FindByID(context.Background(), registered.User.ID)
		require.NoError(t, err2)
		assert.Equal(t, LockoutThreshold, stored.LoginAttempts)

		// Past the lock window the correct password works again.
		env.advance(LockoutDuration + time.Second)
		result, err := env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		require.NoError(t, err)
		assert.NotNil(t, result.Tokens)

		stored, err = env.users.FindByID(context.Background(), registered.User.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.LoginAttempts)
		assert.Nil(t, stored.LockedUntil)
	})

	t.Run("concurrent failures never lose increments", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		const attempts = 12
		codes := make(chan string, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})
				if appError := apperr.As(err); appError != nil {
					codes <- appError.Code
					return
				}
				codes <- ""
			}()
		}
		wg.Wait()
		close(codes)

		locked, invalid := 0, 0
		for code := range codes {
			switch code {
			case CodeAccountLocked:
				locked++
			case CodeInvalidCredentials:
				invalid++
			}
		}
		assert.Equal(t, attempts, locked+invalid, "every attempt resolves to locked or invalid")
		assert.Equal(t, LockoutThreshold-1, invalid, "only pre-lock failures read as bad credentials")

		stored, err := env.users.FindByID(context.Background(), registered.User.ID)
		require.NoError(t, err)
		assert.Equal(t, LockoutThreshold, stored.LoginAttempts, "counter stops exactly at the threshold")
		require.NotNil(t, stored.LockedUntil)
	})
}

// # Email verification

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("token is single use", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)
		token := env.mailer.verificationToken

		user, err := env.service.VerifyEmail(context.Background(), token)
		require.NoError(t, err)
		assert.True(t, user.EmailVerified)

		_, err = env.service.VerifyEmail(context.Background(), token)
		assert.Equal(t, CodeInvalidToken, appCode(t, err))
		assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
	})

	t.Run("unknown token fails", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.service.VerifyEmail(context.Background(), "never-issued")
		assert.Equal(t, CodeInvalidToken, appCode(t, err))
	})
}

// # Password reset

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	const newPassword = `N3w!Passw0rd`

	t.Run("anti-enumeration returns one message for all emails", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)

		existing, err := env.service.RequestPasswordReset(context.Background(), testEmail)
		require.NoError(t, err)
		ghost, err := env.service.RequestPasswordReset(context.Background(), "ghost@example.com")
		require.NoError(t, err)

		assert.Equal(t, existing, ghost)
		assert.NotEmpty(t, env.mailer.resetToken, "matched email hands the token to the mailer")
	})

	t.Run("reset token is single use and ends all sessions", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		_, err := env.service.RequestPasswordReset(context.Background(), testEmail)
		require.NoError(t, err)
		token := env.mailer.resetToken

		require.NoError(t, env.service.ResetPassword(context.Background(), token, newPassword))
		assert.Zero(t, env.sessions.activeCount(registered.User.ID), "reset invalidates every session")

		// The new password works, the old one does not.
		_, err = env.service.Login(context.Background(), testEmail, newPassword, ClientInfo{})
		assert.NoError(t, err)
		_, err = env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		assert.Equal(t, CodeInvalidCredentials, appCode(t, err))

		// Second consumption fails.
		err = env.service.ResetPassword(context.Background(), token, `An0ther!Pass`)
		assert.Equal(t, CodeInvalidToken, appCode(t, err))
	})

	t.Run("expired token fails despite string match", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registerTestUser(t, env)

		_, err := env.service.RequestPasswordReset(context.Background(), testEmail)
		require.NoError(t, err)
		token := env.mailer.resetToken

		env.advance(ResetTokenTTL + time.Minute)

		err = env.service.ResetPassword(context.Background(), token, newPassword)
		assert.Equal(t, CodeInvalidToken, appCode(t, err))
	})

	t.Run("reset clears lockout state", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		for i := 0; i < LockoutThreshold; i++ {
			_, _ = env.service.Login(context.Background(), testEmail, "Wrong!Pass1", ClientInfo{})
		}

		_, err := env.service.RequestPasswordReset(context.Background(), testEmail)
		require.NoError(t, err)
		require.NoError(t, env.service.ResetPassword(context.Background(), env.mailer.resetToken, newPassword))

		stored, err := env.users.FindByID(context.Background(), registered.User.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.LoginAttempts)
		assert.Nil(t, stored.LockedUntil)
	})

	t.Run("weak new password fails before any storage lookup", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		err := env.service.ResetPassword(context.Background(), "abc", "Weak")
		assert.Equal(t, CodeWeakPassword, appCode(t, err))
		assert.Zero(t, env.users.calls)
	})
}

// # Refresh and logout

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("rotation kills the old refresh token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)
		oldRefresh := registered.Tokens.RefreshToken

		refreshed, err := env.service.Refresh(context.Background(), oldRefresh, ClientInfo{})
		require.NoError(t, err)
		assert.NotEqual(t, oldRefresh, refreshed.Tokens.RefreshToken)
		assert.Equal(t, registered.User.ID, refreshed.User.ID)

		// Replaying the rotated-out token fails.
		_, err = env.service.Refresh(context.Background(), oldRefresh, ClientInfo{})
		assert.Equal(t, CodeInvalidRefreshToken, appCode(t, err))

		// The rotated token still works.
		_, err = env.service.Refresh(context.Background(), refreshed.Tokens.RefreshToken, ClientInfo{})
		assert.NoError(t, err)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		_, err := env.service.Refresh(context.Background(), "not-a-jwt", ClientInfo{})
		assert.Equal(t, CodeInvalidRefreshToken, appCode(t, err))
		assert.Equal(t, http.StatusUnauthorized, appStatus(t, err))
	})

	t.Run("refresh after logout fails", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		require.NoError(t, env.service.Logout(context.Background(), registered.Tokens.RefreshToken))

		_, err := env.service.Refresh(context.Background(), registered.Tokens.RefreshToken, ClientInfo{})
		assert.Equal(t, CodeInvalidRefreshToken, appCode(t, err))
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("logout is idempotent", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		require.NoError(t, env.service.Logout(context.Background(), registered.Tokens.RefreshToken))
		require.NoError(t, env.service.Logout(context.Background(), registered.Tokens.RefreshToken))
		require.NoError(t, env.service.Logout(context.Background(), ""))
	})

	t.Run("logout all ends every session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)
		_, err := env.service.Login(context.Background(), testEmail, testPassword, ClientInfo{})
		require.NoError(t, err)
		require.Equal(t, 2, env.sessions.activeCount(registered.User.ID))

		require.NoError(t, env.service.LogoutAll(context.Background(), registered.User.ID))
		assert.Zero(t, env.sessions.activeCount(registered.User.ID))

		// Repeat call stays successful.
		require.NoError(t, env.service.LogoutAll(context.Background(), registered.User.ID))
	})
}

// # Change password

func TestChangePassword(t *testing.T) {
	t.Parallel()

	const newPassword = `N3w!Passw0rd`

	t.Run("wrong current password is rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		err := env.service.ChangePassword(context.Background(), registered.User.ID, "Wrong!Pass1", newPassword)
		assert.Equal(t, CodeInvalidCredentials, appCode(t, err))
	})

	t.Run("weak new password is rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		err := env.service.ChangePassword(context.Background(), registered.User.ID, testPassword, "weak")
		assert.Equal(t, CodeWeakPassword, appCode(t, err))
	})

	t.Run("success swaps the credential and ends sessions", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		registered := registerTestUser(t, env)

		require.NoError(t, env.service.ChangePassword(context.Background(), registered.User.ID, testPassword, newPassword))
		assert.Zero(t, env.sessions.activeCount(registered.User.ID))

		_, err := env.service.Login(context.Background(), testEmail, newPassword, ClientInfo{})
		assert.NoError(t, err)
	})
}

// # Guard support

func TestUserExists(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	registered := registerTestUser(t, env)

	exists, err := env.service.UserExists(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.service.UserExists(context.Background(), "missing-id")
	require.NoError(t, err)
	assert.False(t, exists)
}
