package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter counts requests per client key within a fixed window.
type Counter interface {
	// Incr increments the counter for key and returns the new count.
	// The counter resets when the window elapses.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

// RedisCounter implements Counter on a shared Redis instance, so the
// limit holds across gateway replicas.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a Redis-backed counter.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr increments the per-key counter, setting the window expiry on
// first use.
func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := "ratelimit:" + key

	count, err := c.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

// MemoryCounter implements Counter in process memory. Suitable for a
// single gateway instance and for tests.
type MemoryCounter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	lastSweep time.Time
}

type memoryWindow struct {
	start time.Time
	count int
}

// NewMemoryCounter creates an in-memory counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows:   make(map[string]*memoryWindow),
		lastSweep: time.Now(),
	}
}

// Incr increments the per-key counter, resetting expired windows.
// At most once per window it also evicts windows of clients that
// stopped sending, so the map does not grow with every address ever
// seen.
func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastSweep) >= window {
		for k, w := range c.windows {
			if now.Sub(w.start) >= window {
				delete(c.windows, k)
			}
		}
		c.lastSweep = now
	}

	win, ok := c.windows[key]
	if !ok || now.Sub(win.start) >= window {
		win = &memoryWindow{start: now}
		c.windows[key] = win
	}
	win.count++
	return win.count, nil
}
