// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/science-ai/backend/internal/config"
	"github.com/science-ai/backend/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s stubVerifier) VerifyAccessToken(context.Context, string) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{
		"id":   GetUserID(r.Context()),
		"role": GetUserRole(r.Context()),
		"plan": GetUserPlan(r.Context()),
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthenticator(t *testing.T) {
	claims := &AccessTokenClaims{UserID: "u1", Role: "user", Plan: "pro"}

	tests := []struct {
		name     string
		header   string
		verifier stubVerifier
		status   int
		code     string
	}{
		{"missing token", "", stubVerifier{claims: claims}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", stubVerifier{claims: claims}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired", "Bearer t", stubVerifier{err: core.ErrTokenExpired}, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"garbage", "Bearer t", stubVerifier{err: fmt.Errorf("parse: %w", core.ErrTokenInvalid)}, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"valid", "bearer  t ", stubVerifier{claims: claims}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticator(tt.verifier)(http.HandlerFunc(echoIdentity))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := serve(h, req)
			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
				return
			}
			assert.Contains(t, rec.Body.String(), `"plan":"pro"`)
			assert.Contains(t, rec.Body.String(), `"id":"u1"`)
		})
	}
}

func TestOptionalAuth_IgnoresBadTokens(t *testing.T) {
	h := OptionalAuth(stubVerifier{err: core.ErrTokenInvalid})(http.HandlerFunc(echoIdentity))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")

	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":""`)
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for role, status := range map[string]int{
		"":      http.StatusUnauthorized,
		"user":  http.StatusForbidden,
		"admin": http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))

		rec := serve(RequireAdmin(ok), req)
		assert.Equal(t, status, rec.Code, "role %q", role)
	}
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", ExtractToken(req))

	req.Header.Set("Authorization", "Bearerabc")
	assert.Equal(t, "", ExtractToken(req))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(h, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLogger_RecordsRouteAndStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Get("/usage/check/{counter}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/usage/check/chatMessagesToday", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/usage/check/{counter}", line["route"])
	assert.Equal(t, "/usage/check/chatMessagesToday", line["path"])
	assert.InDelta(t, http.StatusTeapot, line["status"], 0)
	assert.NotEmpty(t, line["request_id"])
}

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	rec := serve(SecurityHeaders(true)(ok), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = serve(SecurityHeaders(false)(ok), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins:   []string{"https://app.science.ai"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	called := false
	h := CORS(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/v1/usage", nil)
	preflight.Header.Set("Origin", "https://app.science.ai")
	preflight.Header.Set("Access-Control-Request-Method", "POST")

	rec := serve(h, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.science.ai", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
	assert.False(t, called)

	foreign := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	foreign.Header.Set("Origin", "https://evil.example")
	rec = serve(h, foreign)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t,
		"/v1/admin/usage/{id}/reset-daily",
		normalizeEndpoint("/v1/admin/usage/0b6f1c7e-8d1a-4a53-9d61-3c1b7f2f9e10/reset-daily"),
	)
	assert.Equal(t, "/v1/users/{id}", normalizeEndpoint("/v1/users/42"))
	assert.Equal(t, "/v1/usage", normalizeEndpoint("/v1/usage/"))
}

func TestLocalLimiter_EnforcesBurst(t *testing.T) {
	l := &localLimiter{}
	limit := PerMinute(60, 2)

	first, err := l.allow("k", limit)
	require.NoError(t, err)
	second, err := l.allow("k", limit)
	require.NoError(t, err)
	third, err := l.allow("k", limit)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Allowed)
	assert.Equal(t, 1, second.Allowed)
	assert.Equal(t, 0, third.Allowed)
	assert.Positive(t, third.RetryAfter)

	other, err := l.allow("other", limit)
	require.NoError(t, err)
	assert.Equal(t, 1, other.Allowed)
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPlanRateLimiter_FallsBackAndUsesPlanBudget(t *testing.T) {
	plans := map[string]PlanRate{
		"free":    {RequestsPerMinute: 60, BurstSize: 1},
		"premium": {RequestsPerMinute: 600, BurstSize: 3},
	}
	h := PlanRateLimiter(unreachableRedis(t), plans)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(user, plan string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), UserIDKey, user)
		ctx = context.WithValue(ctx, UserPlanKey, plan)
		return serve(h, req.WithContext(ctx))
	}

	first := request("u-free", "enterprise")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "free", first.Header().Get("X-RateLimit-Plan"))
	assert.Equal(t, http.StatusTooManyRequests, request("u-free", "enterprise").Code)

	for range 3 {
		rec := request("u-premium", "premium")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "600", rec.Header().Get("X-RateLimit-Limit"))
	}
	limited := request("u-premium", "premium")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
}

func TestEndpointRateLimiter_KeysByUserAndRoute(t *testing.T) {
	h := EndpointRateLimiter(unreachableRedis(t), PerSecond(1, 1))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(user, path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, user))
		return serve(h, req).Code
	}

	assert.Equal(t, http.StatusNoContent, request("u-1", "/v1/citations/export"))
	assert.Equal(t, http.StatusTooManyRequests, request("u-1", "/v1/citations/export"))
	assert.Equal(t, http.StatusNoContent, request("u-1", "/v1/citations/format"))
	assert.Equal(t, http.StatusNoContent, request("u-2", "/v1/citations/export"))
}

func TestKeyByUserAndEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/usage/42/reset-daily", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "u-1"))

	assert.Equal(t,
		"ratelimit:user:u-1:endpoint:/v1/admin/usage/{id}/reset-daily",
		KeyByUserAndEndpoint(req),
	)
}
