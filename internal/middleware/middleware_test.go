package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/wifi-access-backend/pkg/helpers"
	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

type stubVerifier struct {
	token *auth.Token
	err   error
	got   string
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	s.got = idToken
	return s.token, s.err
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestFirebaseAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
		status   int
	}{
		{"missing header", "", &stubVerifier{}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", &stubVerifier{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", &stubVerifier{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", &stubVerifier{token: &auth.Token{UID: "admin-1"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Middleware{AuthClient: tt.verifier}
			var called bool
			var uid string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				uid = UID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil).WithContext(helpers.TestCtx())
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			m.FirebaseAuth(next).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if called != (tt.status == http.StatusOK) {
				t.Fatalf("next called = %v", called)
			}
			if called && uid != "admin-1" {
				t.Fatalf("expected uid in context, got %q", uid)
			}
		})
	}
}

func TestRouterKey(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		query  string
		status int
	}{
		{"match", "s3cret", "?key=s3cret", http.StatusOK},
		{"mismatch", "s3cret", "?key=other", http.StatusUnauthorized},
		{"missing key", "s3cret", "", http.StatusUnauthorized},
		{"prefix only", "s3cret", "?key=s3", http.StatusUnauthorized},
		{"unconfigured secret", "", "?key=", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/router/tickets"+tt.query, nil).WithContext(helpers.TestCtx())
			rr := httptest.NewRecorder()
			RouterKey(tt.secret)(okHandler(&called)).ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if called != (tt.status == http.StatusOK) {
				t.Fatalf("next called = %v", called)
			}
		})
	}
}

func TestLoggerMiddlewareAddsRequestAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	m := NewLoggerMiddleware(base)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
	})
	req := httptest.NewRequest(http.MethodPost, "/notifications", nil)
	req.RemoteAddr = "10.1.2.3"
	req.Header.Set("User-Agent", "forwarder/2.0")
	m.LoggerMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"method=POST", "path=/notifications", "ip=10.1.2.3", "user_agent=forwarder/2.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
