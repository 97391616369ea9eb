// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumenmarket/lumen/internal/platform/constants"
	"github.com/lumenmarket/lumen/internal/platform/middleware"
	requestutil "github.com/lumenmarket/lumen/internal/platform/request"
	"github.com/lumenmarket/lumen/internal/platform/respond"
)

// Handler exposes the auth service over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the auth endpoints.
//
// logout-all requires an authenticated caller; everything else is reachable
// anonymously.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", h.register)
	router.Post("/login", h.login)
	router.Post("/verify-email", h.verifyEmail)
	router.Post("/forgot-password", h.forgotPassword)
	router.Post("/reset-password", h.resetPassword)
	router.Post("/refresh", h.refresh)
	router.Post("/logout", h.logout)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/logout-all", h.logoutAll)
	})

	return router
}

// # Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User                      PublicUser `json:"user"`
	AccessToken               string     `json:"access_token"`
	RefreshToken              string     `json:"refresh_token"`
	ExpiresAt                 time.Time  `json:"expires_at"`
	RequiresEmailVerification bool       `json:"requires_email_verification"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// # Handlers

func (h *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.Register(request.Context(), input, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAccessCookie(writer, request, result.Tokens.AccessToken, result.Tokens.ExpiresAt)
	respond.Created(writer, toAuthResponse(result))
}

func (h *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.Login(request.Context(), input.Email, input.Password, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAccessCookie(writer, request, result.Tokens.AccessToken, result.Tokens.ExpiresAt)
	respond.OK(writer, toAuthResponse(result))
}

func (h *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.VerifyEmail(request.Context(), input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (h *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := h.service.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: message})
}

func (h *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.ResetPassword(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, messageResponse{Message: "Password has been reset. Please log in with your new password"})
}

func (h *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.Refresh(request.Context(), input.RefreshToken, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setAccessCookie(writer, request, result.Tokens.AccessToken, result.Tokens.ExpiresAt)
	respond.OK(writer, toAuthResponse(result))
}

func (h *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	// A missing or malformed body still logs out the cookie session.
	_ = requestutil.DecodeJSON(request, &input)

	if err := h.service.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearAccessCookie(writer, request)
	respond.OK(writer, messageResponse{Message: "Logged out"})
}

func (h *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.LogoutAll(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearAccessCookie(writer, request)
	respond.OK(writer, messageResponse{Message: "Logged out of all sessions"})
}

// # Helpers

func toAuthResponse(result *AuthResult) authResponse {
	return authResponse{
		User:                      result.User,
		AccessToken:               result.Tokens.AccessToken,
		RefreshToken:              result.Tokens.RefreshToken,
		ExpiresAt:                 result.Tokens.ExpiresAt,
		RequiresEmailVerification: result.RequiresEmailVerification,
	}
}

func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: request.UserAgent(),
		IP:        middleware.RealIP(request),
	}
}

// setAccessCookie gives browser clients an HttpOnly access token cookie.
// API clients ignore it and use the Authorization header.
func setAccessCookie(writer http.ResponseWriter, request *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    token,
		Path:     constants.AccessTokenCookiePath,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   request.TLS != nil || request.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAccessCookie expires the cookie with matching attributes.
func clearAccessCookie(writer http.ResponseWriter, request *http.Request) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     constants.AccessTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   request.TLS != nil || request.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})
}
