package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/pageza/foodgram/backend/internal/errs"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for counters
	KeyPrefix string
}

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{redis: client, config: config, now: time.Now}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to update rate limit counter: %w", err)
	}

	count := int(incr.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// LocalLimiter is an in-process token bucket per key, used when redis is not
// configured. Limit tokens refill evenly over Window.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	config   RateLimitConfig
	every    rate.Limit
	now      func() time.Time
}

func NewLocalLimiter(config RateLimitConfig) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   config,
		every:    rate.Every(config.Window / time.Duration(max(config.Limit, 1))),
		now:      time.Now,
	}
}

func (l *LocalLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.config.Limit)
		l.limiters[key] = lim
	}
	return lim
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	lim := l.limiter(key)
	now := l.now()
	allowed := lim.AllowN(now, 1)

	tokens := lim.TokensAt(now)
	var reset time.Time
	if missing := float64(l.config.Limit) - tokens; missing > 0 {
		reset = now.Add(time.Duration(missing / float64(l.every) * float64(time.Second)))
	} else {
		reset = now
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.config.Limit,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		Reset:     reset,
	}, nil
}

// RateLimit limits requests per actor, or per client IP for anonymous
// requests. Limiter failures are logged and the request is let through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor := ActorFrom(c); !actor.IsAnonymous() {
			key = actor.ID.String()
		}

		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn().Err(err).Str("component", "rate_limit").Msg("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retry := int(math.Ceil(time.Until(d.Reset).Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(retry, 1)))
			abortWith(c, errs.ErrRateLimited)
			return
		}
		c.Next()
	}
}
