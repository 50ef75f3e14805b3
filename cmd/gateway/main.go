package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-user-service/internal/gateway"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		userServiceURL, allowedOrigins,
		rateLimitMax, rateLimitWindow, maxBodyBytes,
		redisAddr, redisDB, redisPassword,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		userServiceURL, allowedOrigins,
		rateLimitMax, rateLimitWindow, maxBodyBytes,
		redisAddr, redisDB, redisPassword,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, routing, rate limiting, and Redis configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	userServiceURL string, allowedOrigins []string,
	rateLimitMax int, rateLimitWindow time.Duration, maxBodyBytes int64,
	redisAddr string, redisDB int, redisPassword string,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "3000")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Routing config
	userServiceURL = getEnv("USER_SERVICE_URL", "http://localhost:3001")
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	// Rate limiting and body size config
	if rateLimitMax, err = strconv.Atoi(getEnv("RATE_LIMIT_MAX", "1000")); err != nil {
		return
	}
	var windowMinutes int
	if windowMinutes, err = strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_MINUTES", "15")); err != nil {
		return
	}
	rateLimitWindow = time.Duration(windowMinutes) * time.Minute
	if maxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", strconv.FormatInt(gateway.DefaultMaxBodyBytes, 10)), 10, 64); err != nil {
		return
	}

	// Redis config; empty address falls back to the in-memory counter
	redisAddr = getEnv("REDIS_ADDR", "")
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")

	return
}

// run initializes the logger, the rate limit counter, and the HTTP
// server with the full proxy pipeline, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	userServiceURL string, allowedOrigins []string,
	rateLimitMax int, rateLimitWindow time.Duration, maxBodyBytes int64,
	redisAddr string, redisDB int, redisPassword string,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Rate limit counter; Redis keeps the limit shared across replicas
	var counter gateway.Counter
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Errorw("Redis connection error", "error", err)
			return err
		}
		defer rdb.Close()
		counter = gateway.NewRedisCounter(rdb)
		logger.Log.Infof("Rate limiting backed by Redis at %s", redisAddr)
	} else {
		counter = gateway.NewMemoryCounter()
		logger.Log.Warn("REDIS_ADDR not set, rate limiting is per-instance only")
	}

	handler, err := gateway.NewHandler(gateway.Config{
		Routes: []gateway.RouteConfig{
			{Prefix: "/api/auth", Target: userServiceURL, Service: "User service"},
			{Prefix: "/api/users", Target: userServiceURL, Service: "User service"},
		},
		AllowedOrigins:  allowedOrigins,
		RateLimitMax:    rateLimitMax,
		RateLimitWindow: rateLimitWindow,
		MaxBodyBytes:    maxBodyBytes,
		Counter:         counter,
	})
	if err != nil {
		logger.Log.Errorw("gateway configuration error", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: handler,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
