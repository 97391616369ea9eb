// Copyright (c) 2026 Lumen Market. All rights reserved.
// Author: dev@lumenmarket.dev

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenmarket/lumen/internal/platform/constants"
)

type corsConfig struct {
	development bool
}

func (c corsConfig) IsDevelopment() bool { return c.development }

func TestCORS(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("production origins require a dot boundary", func(t *testing.T) {
		t.Parallel()

		handler := CORS(corsConfig{}, "https://partner.example.com")(okHandler)

		cases := []struct {
			name    string
			origin  string
			allowed bool
		}{
			{"apex domain", "https://lumenmarket.dev", true},
			{"subdomain", "https://shop.lumenmarket.dev", true},
			{"lookalike registration", "https://evillumenmarket.dev", false},
			{"operator allowlist", "https://partner.example.com", true},
			{"unknown origin", "https://elsewhere.example.com", false},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				request := httptest.NewRequest(http.MethodGet, "/", nil)
				request.Header.Set(constants.HeaderOrigin, tc.origin)
				recorder := httptest.NewRecorder()

				handler.ServeHTTP(recorder, request)

				got := recorder.Header().Get("Access-Control-Allow-Origin")
				if tc.allowed {
					assert.Equal(t, tc.origin, got)
				} else {
					assert.Empty(t, got)
				}
			})
		}
	})

	t.Run("development allows any origin", func(t *testing.T) {
		t.Parallel()

		handler := CORS(corsConfig{development: true}, "")(okHandler)

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderOrigin, "http://localhost:3000")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight terminates with no content", func(t *testing.T) {
		t.Parallel()

		handler := CORS(corsConfig{}, "")(okHandler)

		request := httptest.NewRequest(http.MethodOptions, "/", nil)
		request.Header.Set(constants.HeaderOrigin, "https://lumenmarket.dev")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}
