package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGateway(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	handler, err := NewHandler(cfg)
	assert.NoError(t, err)
	return handler
}

func TestGateway_ProxiesToUpstream(t *testing.T) {
	var gotPath, gotMethod string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer upstream.Close()

	handler := newTestGateway(t, Config{
		Routes: []RouteConfig{
			{Prefix: "/api/auth", Target: upstream.URL, Service: "User service"},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"a@b.c"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/api/auth/register", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestGateway_UpstreamDownIs503(t *testing.T) {
	// Start and immediately stop a server to get an unreachable address
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := upstream.URL
	upstream.Close()

	handler := newTestGateway(t, Config{
		Routes: []RouteConfig{
			{Prefix: "/api/users", Target: target, Service: "User service"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp errorBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Service Unavailable", resp.Error)
	assert.Equal(t, "User service is temporarily unavailable", resp.Message)
}

func TestGateway_UnknownRouteIs404(t *testing.T) {
	handler := newTestGateway(t, Config{
		Routes: []RouteConfig{
			{Prefix: "/api/auth", Target: "http://localhost:3001", Service: "User service"},
			{Prefix: "/api/users", Target: "http://localhost:3001", Service: "User service"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/42", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp errorBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, "Route /api/orders/42 not found", resp.Message)
	assert.Equal(t, []string{"/health", "/api/auth/*", "/api/users/*"}, resp.AvailableRoutes)
}

func TestGateway_Health(t *testing.T) {
	handler := newTestGateway(t, Config{
		Routes: []RouteConfig{
			{Prefix: "/api/auth", Target: "http://localhost:3001", Service: "User service"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp healthBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "api-gateway", resp.Service)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(0))

	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
}

func TestGateway_PipelineAppliesGuards(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	handler := newTestGateway(t, Config{
		Routes: []RouteConfig{
			{Prefix: "/api/auth", Target: upstream.URL, Service: "User service"},
		},
		MaxBodyBytes: 32,
		RateLimitMax: 1000,
	})

	t.Run("security headers on proxied responses", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("oversized body never reaches upstream", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(strings.Repeat("x", 64)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("malformed JSON never reaches upstream", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{bad"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
