package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, api.Options{})

	rr := s.do(http.MethodPost, "/api/v1/users", "", map[string]string{
		"email":      "ann@example.com",
		"username":   "ann",
		"first_name": "Ann",
		"last_name":  "Lee",
		"password":   "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	user := decode[types.UserResponse](t, rr)
	assert.Equal(t, "ann", user.Username)
	assert.NotContains(t, rr.Body.String(), "password")

	rr = s.do(http.MethodPost, "/api/v1/auth/token/login", "", map[string]string{"email": "ann@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/auth/token/login", "", map[string]string{"email": "ann@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode[types.TokenResponse](t, rr).AuthToken

	rr = s.do(http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, user.ID, decode[types.UserResponse](t, rr).ID)

	rr = s.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/api/v1/recipes", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "an invalid token is rejected even on reads")

	rr = s.do(http.MethodPost, "/api/v1/users/set_password", token, map[string]string{
		"current_password": "correct-horse",
		"new_password":     "battery-staple",
	})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRegisterInvalid(t *testing.T) {
	s := newTestServer(t, api.Options{})
	rr := s.do(http.MethodPost, "/api/v1/users", "", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[errorBody](t, rr)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t, api.Options{})
	alice, aliceToken := s.login("alice")
	bob, bobToken := s.login("bob")
	salt := testhelpers.CreateIngredient(t, s.db, "salt", "g")
	for _, name := range []string{"one", "two", "three"} {
		testhelpers.CreateRecipe(t, s.db, alice, name, nil, map[*models.Ingredient]int{salt: 1})
	}
	subscribe := "/api/v1/users/" + alice.ID.String() + "/subscribe"

	rr := s.do(http.MethodPost, "/api/v1/users/"+bob.ID.String()+"/subscribe", bobToken, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "cannot subscribe to yourself", decode[errorBody](t, rr).Error)

	rr = s.do(http.MethodPost, subscribe+"?recipes_limit=1", bobToken, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sub := decode[types.SubscriptionResponse](t, rr)
	assert.Equal(t, "alice", sub.Username)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 1)
	assert.Equal(t, int64(3), sub.RecipesCount)

	rr = s.do(http.MethodPost, subscribe, bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "already subscribed", decode[errorBody](t, rr).Error)

	rr = s.do(http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=2", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[types.PageResponse[types.SubscriptionResponse]](t, rr)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 2)

	rr = s.do(http.MethodGet, "/api/v1/users/"+alice.ID.String(), bobToken, nil)
	assert.True(t, decode[types.UserResponse](t, rr).IsSubscribed)
	rr = s.do(http.MethodGet, "/api/v1/users/"+alice.ID.String(), aliceToken, nil)
	assert.False(t, decode[types.UserResponse](t, rr).IsSubscribed)

	rr = s.do(http.MethodDelete, subscribe, bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = s.do(http.MethodDelete, subscribe, bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodGet, "/api/v1/users?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[types.PageResponse[types.UserResponse]](t, rr)
	assert.Equal(t, int64(2), users.Count)
	assert.NotNil(t, users.Next)
}

func TestReferenceEndpoints(t *testing.T) {
	s := newTestServer(t, api.Options{})
	tag := testhelpers.CreateTag(t, s.db, "breakfast", "#E26C2D")
	testhelpers.CreateIngredient(t, s.db, "Sugar", "g")
	testhelpers.CreateIngredient(t, s.db, "salt", "g")

	rr := s.do(http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]types.TagResponse](t, rr), 1)

	rr = s.do(http.MethodGet, "/api/v1/tags/"+tag.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "#E26C2D", decode[types.TagResponse](t, rr).Color)

	rr = s.do(http.MethodGet, "/api/v1/ingredients?name=su", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	ingredients := decode[[]types.IngredientResponse](t, rr)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Sugar", ingredients[0].Name)

	rr = s.do(http.MethodGet, "/api/v1/ingredients/"+tag.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
