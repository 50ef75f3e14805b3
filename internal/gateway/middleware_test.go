package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "off", rr.Header().Get("X-DNS-Prefetch-Control"))
	assert.Equal(t, "noopen", rr.Header().Get("X-Download-Options"))
	assert.Equal(t, "none", rr.Header().Get("X-Permitted-Cross-Domain-Policies"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173"})(okHandler())

	t.Run("allowed origin is echoed with credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rr.Header().Values("Vary"), "Origin")
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered directly", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
	})
}

// failingCounter simulates a broken limiter store.
type failingCounter struct{}

func (failingCounter) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	return 0, errors.New("store down")
}

func TestRateLimit(t *testing.T) {
	t.Run("requests under the limit pass with headers", func(t *testing.T) {
		handler := RateLimit(NewMemoryCounter(), 3, time.Minute)(okHandler())

		for i := 1; i <= 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "3", rr.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("request over the limit is 429", func(t *testing.T) {
		handler := RateLimit(NewMemoryCounter(), 2, time.Minute)(okHandler())

		var rr *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr = httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		var resp errorBody
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Too Many Requests", resp.Error)
		assert.Equal(t, "Rate limit exceeded, please try again later", resp.Message)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		handler := RateLimit(NewMemoryCounter(), 1, time.Minute)(okHandler())

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.Header.Set("X-Forwarded-For", "10.0.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, first)
		assert.Equal(t, http.StatusOK, rr.Code)

		second := httptest.NewRequest(http.MethodGet, "/", nil)
		second.Header.Set("X-Forwarded-For", "10.0.0.2")
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, second)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("counter failure fails open", func(t *testing.T) {
		handler := RateLimit(failingCounter{}, 1, time.Minute)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientKey(req))
}

func TestBodyGuard(t *testing.T) {
	guard := BodyGuard(64)

	t.Run("small valid JSON passes through intact", func(t *testing.T) {
		var gotBody []byte
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})

		body := `{"email":"a@b.c"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		guard(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, body, string(gotBody))
	})

	t.Run("oversized declared body is 413", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(make([]byte, 128)))
		rr := httptest.NewRecorder()
		guard(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

		var resp errorBody
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Request payload exceeds the maximum allowed size", resp.Message)
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		guard(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp errorBody
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid JSON format in request body", resp.Message)
	})

	t.Run("non-JSON content type is not validated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("plain text"))
		req.Header.Set("Content-Type", "text/plain")
		rr := httptest.NewRecorder()
		guard(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("empty body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		guard(okHandler()).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRecover(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := Recover(panicking)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp errorBody
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Internal Server Error", resp.Error)
	assert.Equal(t, "An unexpected error occurred", resp.Message)
}
