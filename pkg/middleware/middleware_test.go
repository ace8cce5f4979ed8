package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/transflow/pkg/middleware"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	var chain middleware.Chain

	for _, name := range []string{"identity", "ratelimit"} {
		chain.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		})
	}

	handler := chain.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"identity", "ratelimit", "handler"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          enabled(true),
		Origins:          []string{"https://translate.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(ok))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/documents", nil)
		req.Header.Set("Origin", "https://translate.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://translate.example.com" {
			t.Errorf("allow-origin = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("allow-credentials = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
			t.Errorf("max-age = %q", got)
		}
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/documents", nil)
		req.Header.Set("Origin", "https://elsewhere.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("allow-origin set for unlisted origin")
		}
	})

	t.Run("preflight short circuits", func(t *testing.T) {
		called := false
		h := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		req := httptest.NewRequest("OPTIONS", "/tasks", nil)
		req.Header.Set("Origin", "https://translate.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || called {
			t.Errorf("preflight status = %d, handler called = %v", rec.Code, called)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		h := middleware.CORS(&middleware.CORSConfig{})(http.HandlerFunc(ok))
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Origin", "https://translate.example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("headers set while disabled")
		}
	})
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := &middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{Origins: "TEST_CORS_ORIGINS"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(cfg.Origins) != 2 {
		t.Errorf("origins = %v, want 2 entries", cfg.Origins)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max age = %d, want 3600", cfg.MaxAge)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := middleware.Logger(logger)(http.HandlerFunc(ok))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/tasks/abc/start", nil))

	out := buf.String()
	if !strings.Contains(out, "method=POST") || !strings.Contains(out, "uri=/tasks/abc/start") {
		t.Errorf("log output missing request fields: %s", out)
	}
	if !strings.Contains(out, "status=200") || !strings.Contains(out, "level=INFO") {
		t.Errorf("log output missing status: %s", out)
	}

	buf.Reset()
	failing := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/documents", nil))

	if out := buf.String(); !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status=500") {
		t.Errorf("server error not logged at error level: %s", out)
	}
}

func enabled(b bool) *bool { return &b }

func newLimiter(cfg *middleware.RateLimitConfig) *middleware.RateLimiter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	key := func(r *http.Request) string { return r.Header.Get("X-Caller") }
	return middleware.NewRateLimiter(cfg, key, logger)
}

func TestRateLimit(t *testing.T) {
	cfg := &middleware.RateLimitConfig{Enabled: enabled(true), RequestsPerSecond: 0.001, Burst: 2, IdleTTL: "1m"}
	handler := newLimiter(cfg).Middleware()(http.HandlerFunc(ok))

	send := func(caller string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/documents", nil)
		req.Header.Set("X-Caller", caller)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := range 2 {
		if rec := send("alice"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := send("alice")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over budget status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	if rec := send("bob"); rec.Code != http.StatusOK {
		t.Errorf("separate caller status = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := &middleware.RateLimitConfig{Enabled: enabled(false), RequestsPerSecond: 0.001, Burst: 1, IdleTTL: "1m"}
	handler := newLimiter(cfg).Middleware()(http.HandlerFunc(ok))

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestRateLimitSweep(t *testing.T) {
	cfg := &middleware.RateLimitConfig{Enabled: enabled(true), RequestsPerSecond: 1, Burst: 1, IdleTTL: "1m"}
	rl := newLimiter(cfg)
	handler := rl.Middleware()(http.HandlerFunc(ok))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Caller", "carol")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if n := rl.Sweep(time.Hour); n != 0 {
		t.Errorf("Sweep(1h) removed %d, want 0", n)
	}
	if n := rl.Sweep(0); n != 1 {
		t.Errorf("Sweep(0) removed %d, want 1", n)
	}
}

func TestRateLimitConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.RequestsPerSecond != 10 || cfg.Burst != 20 || cfg.IdleTTLDuration() != 10*time.Minute {
			t.Errorf("defaults = %+v", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_RL_ENABLED", "true")
		t.Setenv("TEST_RL_RPS", "2.5")
		cfg := &middleware.RateLimitConfig{}
		env := &middleware.RateLimitEnv{Enabled: "TEST_RL_ENABLED", RequestsPerSecond: "TEST_RL_RPS"}
		if err := cfg.Finalize(env); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if !cfg.Active() || cfg.RequestsPerSecond != 2.5 {
			t.Errorf("config = %+v", cfg)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		cfg := &middleware.RateLimitConfig{IdleTTL: "soon"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("Finalize() expected error")
		}
	})
}

func TestConfigMergeKeepsUnsetFlags(t *testing.T) {
	rl := middleware.RateLimitConfig{Enabled: enabled(true), Burst: 5}
	rl.Merge(&middleware.RateLimitConfig{Burst: 8})
	if !rl.Active() || rl.Burst != 8 {
		t.Errorf("rate limit after merge = %+v, want enabled with burst 8", rl)
	}

	rl.Merge(&middleware.RateLimitConfig{Enabled: enabled(false)})
	if rl.Active() {
		t.Error("explicit overlay should disable rate limiting")
	}

	cors := middleware.CORSConfig{Enabled: enabled(true), Origins: []string{"https://a.example.com"}}
	cors.Merge(&middleware.CORSConfig{MaxAge: 60})
	if !cors.Active() || len(cors.Origins) != 1 || cors.MaxAge != 60 {
		t.Errorf("cors after merge = %+v", cors)
	}
}

func TestCORSConfigEnvList(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	cfg := &middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{Origins: "TEST_CORS_ORIGINS"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if strings.Join(cfg.Origins, "|") != strings.Join(want, "|") {
		t.Errorf("Origins = %v, want %v", cfg.Origins, want)
	}
	if cfg.Active() {
		t.Error("cors should stay disabled when never enabled")
	}
}
