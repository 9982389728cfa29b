package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func limitedRouter(limiter Limiter, actor *types.Actor) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	if actor != nil {
		r.Use(func(c *gin.Context) { SetActor(c, *actor) })
	}
	r.Use(RateLimit(limiter))
	r.POST("/recipes", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestLocalLimiterBlocksAfterLimit(t *testing.T) {
	limiter := NewLocalLimiter(RateLimitConfig{Window: time.Hour, Limit: 3})
	actor := types.Actor{ID: uuid.New()}
	r := limitedRouter(limiter, &actor)

	for i := 0; i < 3; i++ {
		rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		require.Equal(t, http.StatusCreated, rr.Code, "request %d", i+1)
		assert.Equal(t, "3", rr.Header().Get("X-RateLimit-Limit"))
	}

	rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decodeError(t, rr).Error)

	other := limitedRouter(limiter, &types.Actor{ID: uuid.New()})
	rr = serve(other, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusCreated, rr.Code, "limits are per actor")
}

func TestLocalLimiterRefills(t *testing.T) {
	limiter := NewLocalLimiter(RateLimitConfig{Window: time.Minute, Limit: 2})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(context.Background(), "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, _ := limiter.Allow(context.Background(), "k")
	assert.False(t, d.Allowed)

	now = now.Add(30 * time.Second)
	d, _ = limiter.Allow(context.Background(), "k")
	assert.True(t, d.Allowed, "one token refills every window/limit")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := limitedRouter(failingLimiter{}, nil)
	rr := serve(r, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
}

func TestRedisLimiter(t *testing.T) {
	client := testhelpers.NewRedisClient(t)
	limiter := NewRedisLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test"})

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(context.Background(), "user")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1-i, d.Remaining)
	}
	d, err := limiter.Allow(context.Background(), "user")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.True(t, d.Reset.After(time.Now()))
}
