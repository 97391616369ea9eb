// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/ctxutil"
	"github.com/lumenmarket/lumen/internal/platform/sec"
)

type fakeVerifier struct {
	claims *sec.AuthClaims
	err    error
}

func (f *fakeVerifier) VerifyAccess(string) (*sec.AuthClaims, error) {
	return f.claims, f.err
}

type fakeResolver struct {
	exists bool
	err    error
}

func (f *fakeResolver) UserExists(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func echoUserHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(ctxutil.GetAuthUserID(r.Context())))
	})
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	code, _ := body["code"].(string)
	return code
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	claims := &sec.AuthClaims{UserID: "user-1"}

	t.Run("no credential passes through anonymous", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{claims: claims}, &fakeResolver{exists: true})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("valid bearer token injects claims", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{claims: claims}, &fakeResolver{exists: true})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("valid cookie token injects claims", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{claims: claims}, &fakeResolver{exists: true})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "some-token"})

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("expired token is rejected with 401", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{err: sec.ErrTokenExpired}, &fakeResolver{exists: true})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer stale-token")

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
	})

	t.Run("invalid token is rejected not downgraded", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{err: sec.ErrTokenInvalid}, &fakeResolver{exists: true})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted account invalidates a signed token", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{claims: claims}, &fakeResolver{exists: false})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer orphaned-token")

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolver failure surfaces as 500", func(t *testing.T) {
		t.Parallel()

		mw := Authenticate(&fakeVerifier{claims: claims}, &fakeResolver{err: assert.AnError})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")

		mw(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("anonymous is rejected", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		RequireAuth(echoUserHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(req.Context(), &sec.AuthClaims{UserID: "user-9"})

		RequireAuth(echoUserHandler(t)).ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-9", rec.Body.String())
	})
}
