package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"

	"github.com/example/meeting-planner/internal/application"
)

func TestPrincipalFromHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		userHeader    string
		adminHeader   string
		wantPresent   bool
		wantPrincipal application.Principal
	}{
		{
			name:        "no headers leaves the request unauthenticated",
			wantPresent: false,
		},
		{
			name:          "user header yields a plain principal",
			userHeader:    "user-1",
			wantPresent:   true,
			wantPrincipal: application.Principal{UserID: "user-1"},
		},
		{
			name:          "admin flag is honored case-insensitively",
			userHeader:    " user-2 ",
			adminHeader:   "TRUE",
			wantPresent:   true,
			wantPrincipal: application.Principal{UserID: "user-2", IsAdmin: true},
		},
		{
			name:          "admin flag requires a user",
			adminHeader:   "true",
			wantPresent:   false,
			wantPrincipal: application.Principal{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got application.Principal
			var present bool
			handler := PrincipalFromHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, present = PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/planifications", nil)
			if tc.userHeader != "" {
				req.Header.Set("X-User-ID", tc.userHeader)
			}
			if tc.adminHeader != "" {
				req.Header.Set("X-Admin", tc.adminHeader)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
			}
			if present != tc.wantPresent {
				t.Fatalf("principal present = %v, want %v", present, tc.wantPresent)
			}
			if present && got != tc.wantPrincipal {
				t.Fatalf("principal = %+v, want %+v", got, tc.wantPrincipal)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("throttles a client past its burst", func(t *testing.T) {
		t.Parallel()

		handler := RateLimit(rate.Limit(1), 2, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/planifications", nil)
			req.RemoteAddr = "10.0.0.1:42000"
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)
			if recorder.Code != http.StatusOK {
				t.Fatalf("request %d: status = %d, want %d", i, recorder.Code, http.StatusOK)
			}
		}

		req := httptest.NewRequest(http.MethodGet, "/planifications", nil)
		req.RemoteAddr = "10.0.0.1:42000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusTooManyRequests {
			t.Fatalf("status = %d, want %d", recorder.Code, http.StatusTooManyRequests)
		}
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		t.Parallel()

		handler := RateLimit(rate.Limit(1), 1, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		first := httptest.NewRequest(http.MethodGet, "/planifications", nil)
		first.RemoteAddr = "10.0.0.1:42000"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, first)
		if recorder.Code != http.StatusOK {
			t.Fatalf("first client: status = %d, want %d", recorder.Code, http.StatusOK)
		}

		second := httptest.NewRequest(http.MethodGet, "/planifications", nil)
		second.RemoteAddr = "10.0.0.2:42000"
		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, second)
		if recorder.Code != http.StatusOK {
			t.Fatalf("second client: status = %d, want %d", recorder.Code, http.StatusOK)
		}
	})
}
