package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// SecurityHeaders applies a fixed set of response headers to every
// request. The set is not configurable.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// CORS allows only the configured origins, with credentials, and
// answers preflight requests directly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit enforces a fixed-window request cap per client key. Counter
// failures fail open: a broken limiter store must not take the gateway
// down with it.
func RateLimit(counter Counter, max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := counter.Incr(r.Context(), clientKey(r), window)
			if err != nil {
				logger.Log.Errorw("rate limit counter failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			remaining := max - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > max {
				logger.Log.Warnw("rate limit exceeded",
					"client", clientKey(r),
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeGatewayError(w, http.StatusTooManyRequests, "Too Many Requests",
					"Rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the client for rate limiting. The first
// X-Forwarded-For entry wins when the gateway sits behind another proxy.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// BodyGuard enforces the request body cap and rejects malformed JSON
// before anything is forwarded upstream. An oversized body is never
// partially proxied.
func BodyGuard(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxBytes {
				writeGatewayError(w, http.StatusRequestEntityTooLarge, "Payload Too Large",
					"Request payload exceeds the maximum allowed size")
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					writeGatewayError(w, http.StatusRequestEntityTooLarge, "Payload Too Large",
						"Request payload exceeds the maximum allowed size")
					return
				}
				writeGatewayError(w, http.StatusBadRequest, "Bad Request",
					"Unable to read request body")
				return
			}

			contentType := r.Header.Get("Content-Type")
			if strings.Contains(contentType, "application/json") && len(body) > 0 && !json.Valid(body) {
				writeGatewayError(w, http.StatusBadRequest, "Bad Request",
					"Invalid JSON format in request body")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))

			next.ServeHTTP(w, r)
		})
	}
}

// Recover is the terminal handler for anything that panics inside the
// pipeline.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.Errorw("unhandled panic",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeGatewayError(w, http.StatusInternalServerError, "Internal Server Error",
					"An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
