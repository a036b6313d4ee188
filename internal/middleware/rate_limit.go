package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig describes a fixed-window limit.
type RateLimitConfig struct {
	Prefix  string
	Max     int
	Window  time.Duration
	Message string
	// Key picks the bucket for a request. Defaults to the client IP.
	Key func(c *fiber.Ctx) string
}

// RateLimit counts requests per key in Redis. It is a no-op without Redis and
// fails open on cache errors.
func RateLimit(cache *redis.Client, cfg RateLimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Key == nil {
		cfg.Key = func(c *fiber.Ctx) string { return c.IP() }
	}
	if cfg.Message == "" {
		cfg.Message = "too many requests, try again later"
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		key := "tangent:rl:" + cfg.Prefix + ":" + cfg.Key(c)
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, cfg.Window)
		}
		if cnt > int64(cfg.Max) {
			if ttl, err := cache.TTL(c.UserContext(), key).Result(); err == nil && ttl > 0 {
				c.Set(fiber.HeaderRetryAfter, formatSeconds(ttl))
			}
			return fiber.NewError(http.StatusTooManyRequests, cfg.Message)
		}
		return c.Next()
	}
}

// PhoneOrIP buckets by the phone field of a JSON body, falling back to the client IP.
func PhoneOrIP(c *fiber.Ctx) string {
	var req struct {
		Phone string `json:"phone"`
	}
	_ = c.BodyParser(&req)
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		return phone
	}
	return c.IP()
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
