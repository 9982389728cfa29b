package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

type testEnv struct {
	db       *gorm.DB
	images   *testhelpers.MemoryImageStore
	rel      *service.Relations
	recipes  *service.RecipeService
	users    *service.UserService
	shopping *service.ShoppingListService
	auth     *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	v := validation.New()
	images := testhelpers.NewMemoryImageStore()
	rel := service.NewRelations(db)
	return &testEnv{
		db:       db,
		images:   images,
		rel:      rel,
		recipes:  service.NewRecipeService(db, rel, service.NewImageService(images), v),
		users:    service.NewUserService(db, rel),
		shopping: service.NewShoppingListService(db),
		auth:     service.NewAuthService(db, "test-secret", time.Hour, nil, v),
	}
}

func actorOf(u *models.User) types.Actor {
	return types.Actor{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func firstPage() types.Page {
	return types.Page{Number: 1, Limit: 10}
}

func recipeInput(name string, tags []*models.Tag, amounts map[*models.Ingredient]int) types.RecipeInput {
	in := types.RecipeInput{
		Name:        name,
		Text:        "Mix and serve " + name,
		Image:       testhelpers.PNGDataURI(),
		CookingTime: 15,
	}
	for _, tag := range tags {
		in.Tags = append(in.Tags, tag.ID)
	}
	for ing, amount := range amounts {
		in.Ingredients = append(in.Ingredients, types.IngredientAmount{ID: ing.ID, Amount: amount})
	}
	return in
}

var ctx = context.Background()

func ids(recipes []types.RecipeResponse) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.ID)
	}
	return out
}
