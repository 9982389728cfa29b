package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/validation"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	images *testhelpers.MemoryImageStore
}

func newTestServer(t *testing.T, opts api.Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)
	v := validation.New()
	images := testhelpers.NewMemoryImageStore()
	rel := service.NewRelations(db)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil, v)

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.ErrorHandler())
	api.SetupAPI(router, api.Services{
		Auth:        auth,
		Users:       service.NewUserService(db, rel),
		Recipes:     service.NewRecipeService(db, rel, service.NewImageService(images), v),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Shopping:    service.NewShoppingListService(db),
	}, opts)

	return &testServer{t: t, db: db, router: router, images: images}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// login creates a fixture user and returns it with a fresh token.
func (s *testServer) login(username string) (*models.User, string) {
	s.t.Helper()
	user := testhelpers.CreateUser(s.t, s.db, username)
	rr := s.do(http.MethodPost, "/api/v1/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": testhelpers.TestPassword,
	})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return user, resp.AuthToken
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
