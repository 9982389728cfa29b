package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/types"
)

type stubValidator struct {
	tokens map[string]types.Actor
}

func (s stubValidator) ValidateToken(_ context.Context, token string) (*types.Actor, error) {
	actor, ok := s.tokens[token]
	if !ok {
		return nil, errs.Unauthenticated("invalid token")
	}
	return &actor, nil
}

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(), mw)
	r.GET("/", func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"anonymous": actor.IsAnonymous(), "username": actor.Username})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	v := stubValidator{tokens: map[string]types.Actor{"good": {ID: uuid.New(), Username: "ann"}}}
	r := authRouter(RequireAuth(v))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"bearer", "Bearer good", http.StatusOK},
		{"token scheme", "Token good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := serve(r, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"anonymous":false,"username":"ann"}`, rr.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	v := stubValidator{tokens: map[string]types.Actor{"good": {ID: uuid.New(), Username: "ann"}}}
	r := authRouter(OptionalAuth(v))

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"anonymous":true,"username":""}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr = serve(r, req)
	assert.JSONEq(t, `{"anonymous":false,"username":"ann"}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "a bad token is not silently anonymous")
}
