package anubis

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func writeJSON(w http.ResponseWriter, payload any) {
	raw, _ := sonic.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func newTestClient(srvURL string, cfg Config) *Client {
	cfg.BaseURL = srvURL
	if cfg.IntrospectPath == "" {
		cfg.IntrospectPath = "/v1/auth/introspect"
	}
	return NewClient(nil, cfg, logging.NewNop())
}

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Errorf("unexpected token value: %s", req["token"])
		}

		writeJSON(w, map[string]any{
			"active":  true,
			"user_id": " user-123 ",
			"email":   "alice@example.com",
			"roles":   []string{"viewer"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Config{AdminKey: "admin-secret"})

	principal, err := client.VerifyAccessToken(t.Context(), " token-abc ")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}
	if principal.UserID != "user-123" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
	if principal.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", principal.Email)
	}
}

func TestClientVerifyAccessToken_RejectsBeforeCalling(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1", Config{})
	_, err := client.VerifyAccessToken(t.Context(), "   ")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClientVerifyAccessToken_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "inactive token",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, map[string]any{"active": false})
			},
			wantErr: usecase.ErrUnauthorized,
		},
		{
			name: "active without user",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, map[string]any{"active": true})
			},
			wantErr: usecase.ErrUnauthorized,
		},
		{
			name: "unauthorized status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantErr: usecase.ErrUnauthorized,
		},
		{
			name: "forbidden admin key",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			},
			wantErr: usecase.ErrDependencyUnavailable,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: usecase.ErrDependencyUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"active":`))
			},
			wantErr: usecase.ErrDependencyUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			client := newTestClient(srv.URL, Config{})
			_, err := client.VerifyAccessToken(t.Context(), "token-abc")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestClientVerifyAccessToken_UsesPrincipalCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"active": true, "user_id": "user-cache"})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Config{CacheTTL: time.Minute})

	for i := 0; i < 2; i++ {
		principal, err := client.VerifyAccessToken(t.Context(), "cached-token")
		if err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
		if principal.UserID != "user-cache" {
			t.Fatalf("unexpected user id: %s", principal.UserID)
		}
	}
	if _, err := client.VerifyAccessToken(t.Context(), "other-token"); err != nil {
		t.Fatalf("verify other token failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Fatalf("expected two introspection calls with cache, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_DoesNotCacheRejections(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, map[string]any{"active": false})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Config{CacheTTL: time.Minute})
	for i := 0; i < 2; i++ {
		if _, err := client.VerifyAccessToken(t.Context(), "revoked"); !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected rejections to bypass the cache, got %d calls", calls.Load())
	}
}

func TestClientVerifyAccessToken_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, Config{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Hour,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 3; i++ {
		if _, err := client.VerifyAccessToken(t.Context(), "token"); !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("attempt %d: expected ErrDependencyUnavailable, got %v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected breaker to short-circuit the third call, got %d calls", calls.Load())
	}
}

func TestIntrospectionURL(t *testing.T) {
	t.Parallel()

	cases := map[string][2]string{
		"https://anubis.example.com/v1/introspect":   {"https://anubis.example.com/", "v1/introspect"},
		"https://anubis.example.com/auth/introspect": {"https://anubis.example.com/auth", "/introspect"},
		"https://anubis.example.com":                 {"https://anubis.example.com/", ""},
		"https://other.example.com/x":                {"https://anubis.example.com", "https://other.example.com/x"},
	}
	for want, in := range cases {
		if got := introspectionURL(in[0], in[1]); got != want {
			t.Fatalf("introspectionURL(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

func TestPrincipalCacheKey(t *testing.T) {
	t.Parallel()

	key := principalCacheKey("secret-token")
	if strings.Contains(key, "secret-token") {
		t.Fatalf("cache key leaks the raw token: %s", key)
	}
	if key != principalCacheKey("secret-token") || key == principalCacheKey("other-token") {
		t.Fatalf("cache key must be stable per token and distinct across tokens")
	}
}
