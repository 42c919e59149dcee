package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type fakeAuthenticator struct {
	valid string
	got   string
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) error {
	f.got = token
	if token != "" && token == f.valid {
		return nil
	}
	return errors.New("denied")
}

func rejectWith401(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, err.Error(), http.StatusUnauthorized)
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantCalled bool
		wantCode   int
		wantToken  string
	}{
		{name: "no header", header: "", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantCalled: true, wantCode: http.StatusOK, wantToken: "good"},
		{name: "lower case scheme", header: "bearer good", wantCalled: true, wantCode: http.StatusOK, wantToken: "good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := AdminAuth(&fakeAuthenticator{valid: "good"}, rejectWith401)(dummy)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/fields", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			h.ServeHTTP(rec, req)

			if dummy.called != tt.wantCalled {
				t.Fatalf("next called = %v; want %v", dummy.called, tt.wantCalled)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCalled {
				if got := GetTokenFromContext(dummy.ctx); got != tt.wantToken {
					t.Errorf("context token = %q; want %q", got, tt.wantToken)
				}
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Bearer":           "",
		"Bearer abc":       "abc",
		"Bearer  abc ":     "abc",
		"Token abc":        "",
		"BEARER abc.def-1": "abc.def-1",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		if got := BearerToken(req); got != want {
			t.Errorf("BearerToken(%q) = %q; want %q", header, got, want)
		}
	}
}

func TestGetTokenFromContext(t *testing.T) {
	if got := GetTokenFromContext(context.Background()); got != "" {
		t.Errorf("expected empty token for bare context, got %q", got)
	}
	ctx := context.WithValue(context.Background(), tokenKey, "abc")
	if got := GetTokenFromContext(ctx); got != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
}
