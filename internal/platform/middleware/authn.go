// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/lumenmarket/lumen/internal/platform/apperr"
	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/ctxutil"
	requestutil "github.com/lumenmarket/lumen/internal/platform/request"
	"github.com/lumenmarket/lumen/internal/platform/respond"
	"github.com/lumenmarket/lumen/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the auth service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccess(token string) (*sec.AuthClaims, error)
}

// UserResolver reports whether the subject of a verified token still exists
// as an active account.
//
// A token outlives its account when the user is deleted mid-session; the
// guard must reject it even though the signature is valid.
type UserResolver interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Authenticate extracts and verifies the access token on every request.
//
// # Flow
//  1. Look for 'Authorization: Bearer <token>', then the auth cookie.
//  2. If absent, the request proceeds as anonymous.
//  3. If present, verify signature and expiry via [TokenVerifier].
//  4. Confirm the subject account still exists via [UserResolver].
//  5. Inject [*sec.AuthClaims] into the request context for downstream use.
//
// A present-but-bad credential is rejected immediately rather than downgraded
// to anonymous, so clients learn their session is dead at the first request.
func Authenticate(verifier TokenVerifier, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			token := requestutil.BearerToken(request, constants.AccessTokenCookieName)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				if errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, apperr.Unauthorized("Token expired"))
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			exists, err := resolver.UserExists(request.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if !exists {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, ok := ctxutil.GetAuthUser(request.Context()); !ok {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
