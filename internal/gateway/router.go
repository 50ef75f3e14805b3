package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/middlewares"
)

// Defaults for the gateway pipeline.
const (
	DefaultRateLimitMax    = 1000
	DefaultRateLimitWindow = 15 * time.Minute
	DefaultMaxBodyBytes    = 10 << 20 // 10 MiB
)

// Config wires the gateway pipeline together.
type Config struct {
	Routes          []RouteConfig
	AllowedOrigins  []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxBodyBytes    int64
	Counter         Counter
}

type healthBody struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// NewHandler builds the complete gateway handler. The pipeline order is
// fixed: security headers, CORS, rate limit, body guard, local health,
// prefix dispatch, 404.
func NewHandler(cfg Config) (http.Handler, error) {
	table, err := NewRouteTable(cfg.Routes)
	if err != nil {
		return nil, err
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = DefaultRateLimitMax
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = DefaultRateLimitWindow
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Counter == nil {
		cfg.Counter = NewMemoryCounter()
	}

	proxies := make(map[string]http.Handler, len(cfg.Routes))
	for _, route := range table.routes {
		proxies[route.Prefix] = newProxy(route)
	}

	availableRoutes := table.AvailableRoutes()
	started := time.Now()

	r := chi.NewRouter()
	r.Use(Recover)
	r.Use(middlewares.LoggingMiddleware(logger.Log))
	r.Use(SecurityHeaders)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(RateLimit(cfg.Counter, cfg.RateLimitMax, cfg.RateLimitWindow))
	r.Use(BodyGuard(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthBody{
			Status:        "healthy",
			Service:       "api-gateway",
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			UptimeSeconds: int64(time.Since(started).Seconds()),
		})
	})

	dispatch := func(w http.ResponseWriter, req *http.Request) {
		route := table.Match(req.URL.Path)
		if route == nil {
			writeNotFound(w, req.URL.Path, availableRoutes)
			return
		}
		proxies[route.Prefix].ServeHTTP(w, req)
	}

	r.NotFound(dispatch)
	r.MethodNotAllowed(dispatch)

	return r, nil
}
