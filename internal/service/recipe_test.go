package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRecipeCreate(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast", "#E26C2D")
	lunch := testhelpers.CreateTag(t, env.db, "lunch", "#49B64E")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	eggs := testhelpers.CreateIngredient(t, env.db, "eggs", "pcs")

	in := recipeInput("Omelette", []*models.Tag{lunch, breakfast}, map[*models.Ingredient]int{salt: 5, eggs: 3})
	got, err := env.recipes.Create(ctx, actorOf(author), in)
	require.NoError(t, err)

	assert.Equal(t, "Omelette", got.Name)
	assert.Equal(t, 15, got.CookingTime)
	assert.Equal(t, author.ID, got.Author.ID)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
	assert.False(t, got.PubDate.IsZero())

	require.Len(t, got.Tags, 2)
	assert.Equal(t, "breakfast", got.Tags[0].Slug)
	assert.Equal(t, "lunch", got.Tags[1].Slug)

	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, types.RecipeIngredientResponse{ID: eggs.ID, Name: "eggs", MeasurementUnit: "pcs", Amount: 3}, got.Ingredients[0])
	assert.Equal(t, types.RecipeIngredientResponse{ID: salt.ID, Name: "salt", MeasurementUnit: "g", Amount: 5}, got.Ingredients[1])

	assert.True(t, env.images.Has(got.Image), "image should be stored")
}

func TestRecipeCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "dinner", "#8775D2")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")

	valid := func() types.RecipeInput {
		return recipeInput("Soup", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 10})
	}

	tests := []struct {
		name   string
		mutate func(*types.RecipeInput)
		code   errs.Code
		field  string
	}{
		{"empty tags", func(in *types.RecipeInput) { in.Tags = nil }, errs.CodeValidation, "tags"},
		{"duplicate tags", func(in *types.RecipeInput) { in.Tags = append(in.Tags, tag.ID) }, errs.CodeValidation, "tags"},
		{"unknown tag", func(in *types.RecipeInput) { in.Tags = []uuid.UUID{uuid.New()} }, errs.CodeValidation, "tags"},
		{"empty ingredients", func(in *types.RecipeInput) { in.Ingredients = nil }, errs.CodeValidation, "ingredients"},
		{"duplicate ingredients", func(in *types.RecipeInput) {
			in.Ingredients = append(in.Ingredients, types.IngredientAmount{ID: salt.ID, Amount: 2})
		}, errs.CodeValidation, "ingredients"},
		{"zero amount", func(in *types.RecipeInput) { in.Ingredients[0].Amount = 0 }, errs.CodeValidation, "ingredients[0].amount"},
		{"amount too large", func(in *types.RecipeInput) { in.Ingredients[0].Amount = 101 }, errs.CodeValidation, "ingredients[0].amount"},
		{"zero cooking time", func(in *types.RecipeInput) { in.CookingTime = 0 }, errs.CodeValidation, "cooking_time"},
		{"missing name", func(in *types.RecipeInput) { in.Name = "" }, errs.CodeValidation, "name"},
		{"image url", func(in *types.RecipeInput) { in.Image = "https://example.com/a.png" }, errs.CodeValidation, "image"},
		{"unknown ingredient", func(in *types.RecipeInput) { in.Ingredients[0].ID = uuid.New() }, errs.CodeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			_, err := env.recipes.Create(ctx, actorOf(author), in)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.CodeOf(err))
			if tt.field != "" {
				var e *errs.Error
				require.ErrorAs(t, err, &e)
				assert.Contains(t, e.Fields, tt.field)
			}
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "failed creates must not leave recipes behind")
}

func TestRecipeCreateRequiresActor(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.recipes.Create(ctx, types.Actor{}, types.RecipeInput{})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestRecipeUpdateReplacesAssociations(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast", "#E26C2D")
	dinner := testhelpers.CreateTag(t, env.db, "dinner", "#8775D2")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	sugar := testhelpers.CreateIngredient(t, env.db, "sugar", "g")

	created, err := env.recipes.Create(ctx, actorOf(author),
		recipeInput("Porridge", []*models.Tag{breakfast}, map[*models.Ingredient]int{salt: 1}))
	require.NoError(t, err)

	in := recipeInput("Sweet porridge", []*models.Tag{dinner}, map[*models.Ingredient]int{sugar: 20})
	in.Image = created.Image
	in.CookingTime = 25

	updated, err := env.recipes.Update(ctx, actorOf(author), created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Sweet porridge", updated.Name)
	assert.Equal(t, 25, updated.CookingTime)
	assert.Equal(t, created.Image, updated.Image)
	assert.True(t, created.PubDate.Equal(updated.PubDate), "pub_date must not change")
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, dinner.ID, updated.Tags[0].ID)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, sugar.ID, updated.Ingredients[0].ID)
	assert.Equal(t, 20, updated.Ingredients[0].Amount)

	var rows int64
	require.NoError(t, env.db.Model(&models.IngredientRecipe{}).Where("recipe_id = ?", created.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRecipeUpdateNewImageRemovesOld(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	tag := testhelpers.CreateTag(t, env.db, "lunch", "#49B64E")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")

	in := recipeInput("Salad", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 2})
	created, err := env.recipes.Create(ctx, actorOf(author), in)
	require.NoError(t, err)

	updated, err := env.recipes.Update(ctx, actorOf(author), created.ID, in)
	require.NoError(t, err)

	assert.NotEqual(t, created.Image, updated.Image)
	assert.True(t, env.images.Has(updated.Image))
	assert.False(t, env.images.Has(created.Image))
}

func TestRecipeUpdateAuthorization(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	other := testhelpers.CreateUser(t, env.db, "bob")
	admin := testhelpers.CreateAdmin(t, env.db, "root")
	tag := testhelpers.CreateTag(t, env.db, "lunch", "#49B64E")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")

	created, err := env.recipes.Create(ctx, actorOf(author),
		recipeInput("Salad", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 2}))
	require.NoError(t, err)

	in := recipeInput("Stolen salad", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 3})
	in.Image = created.Image

	_, err = env.recipes.Update(ctx, actorOf(other), created.ID, in)
	assert.ErrorIs(t, err, errs.ErrPermissionDenied)

	got, err := env.recipes.Get(ctx, types.Actor{}, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salad", got.Name, "forbidden update must not change the recipe")

	_, err = env.recipes.Update(ctx, actorOf(admin), created.ID, in)
	assert.NoError(t, err)

	_, err = env.recipes.Update(ctx, actorOf(author), uuid.New(), in)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRecipeDelete(t *testing.T) {
	env := newTestEnv(t)
	author := testhelpers.CreateUser(t, env.db, "alice")
	other := testhelpers.CreateUser(t, env.db, "bob")
	tag := testhelpers.CreateTag(t, env.db, "lunch", "#49B64E")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")

	created, err := env.recipes.Create(ctx, actorOf(author),
		recipeInput("Salad", []*models.Tag{tag}, map[*models.Ingredient]int{salt: 2}))
	require.NoError(t, err)
	_, err = env.recipes.AddFavorite(ctx, actorOf(other), created.ID)
	require.NoError(t, err)
	_, err = env.recipes.AddToCart(ctx, actorOf(other), created.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.recipes.Delete(ctx, actorOf(other), created.ID), errs.ErrPermissionDenied)
	require.NoError(t, env.recipes.Delete(ctx, actorOf(author), created.ID))

	_, err = env.recipes.Get(ctx, actorOf(author), created.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.False(t, env.images.Has(created.Image))

	for _, m := range []interface{}{&models.Favorite{}, &models.ShoppingCart{}, &models.IngredientRecipe{}, &models.RecipeTag{}} {
		var n int64
		require.NoError(t, env.db.Model(m).Where("recipe_id = ?", created.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
}

func TestRecipeListFilters(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	breakfast := testhelpers.CreateTag(t, env.db, "breakfast", "#E26C2D")
	dinner := testhelpers.CreateTag(t, env.db, "dinner", "#8775D2")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")

	porridge := testhelpers.CreateRecipe(t, env.db, alice, "Porridge", []*models.Tag{breakfast}, map[*models.Ingredient]int{salt: 1})
	stew := testhelpers.CreateRecipe(t, env.db, alice, "Stew", []*models.Tag{dinner}, map[*models.Ingredient]int{salt: 4})
	pancakes := testhelpers.CreateRecipe(t, env.db, bob, "Pancakes", []*models.Tag{breakfast, dinner}, map[*models.Ingredient]int{salt: 2})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []*models.Recipe{porridge, stew, pancakes} {
		require.NoError(t, env.db.Model(r).Update("pub_date", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	_, err := env.recipes.AddFavorite(ctx, actorOf(bob), stew.ID)
	require.NoError(t, err)
	_, err = env.recipes.AddToCart(ctx, actorOf(bob), porridge.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  types.Actor
		filter types.RecipeFilter
		want   []uuid.UUID
	}{
		{"all newest first", types.Actor{}, types.RecipeFilter{}, []uuid.UUID{pancakes.ID, stew.ID, porridge.ID}},
		{"tag", types.Actor{}, types.RecipeFilter{Tags: []string{"breakfast"}}, []uuid.UUID{pancakes.ID, porridge.ID}},
		{"tags are ORed", types.Actor{}, types.RecipeFilter{Tags: []string{"breakfast", "dinner"}}, []uuid.UUID{pancakes.ID, stew.ID, porridge.ID}},
		{"author", types.Actor{}, types.RecipeFilter{AuthorID: &alice.ID}, []uuid.UUID{stew.ID, porridge.ID}},
		{"favorited", actorOf(bob), types.RecipeFilter{IsFavorited: true}, []uuid.UUID{stew.ID}},
		{"in cart", actorOf(bob), types.RecipeFilter{IsInShoppingCart: true}, []uuid.UUID{porridge.ID}},
		{"anonymous favorited", types.Actor{}, types.RecipeFilter{IsFavorited: true}, []uuid.UUID{}},
		{"name search", types.Actor{}, types.RecipeFilter{Query: "cake"}, []uuid.UUID{pancakes.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := env.recipes.List(ctx, tt.actor, tt.filter, firstPage())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestRecipeListPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		testhelpers.CreateRecipe(t, env.db, alice, name, nil, map[*models.Ingredient]int{salt: 1})
	}

	got, total, err := env.recipes.List(ctx, types.Actor{}, types.RecipeFilter{}, types.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, got, 2)

	got, _, err = env.recipes.List(ctx, types.Actor{}, types.RecipeFilter{}, types.Page{Number: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecipeFlagsPerRequester(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	salt := testhelpers.CreateIngredient(t, env.db, "salt", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, alice, "Stew", nil, map[*models.Ingredient]int{salt: 4})

	_, err := env.recipes.AddFavorite(ctx, actorOf(bob), recipe.ID)
	require.NoError(t, err)
	_, err = env.users.Subscribe(ctx, actorOf(bob), alice.ID, 0)
	require.NoError(t, err)

	forBob, err := env.recipes.Get(ctx, actorOf(bob), recipe.ID)
	require.NoError(t, err)
	assert.True(t, forBob.IsFavorited)
	assert.False(t, forBob.IsInShoppingCart)
	assert.True(t, forBob.Author.IsSubscribed)

	forAlice, err := env.recipes.Get(ctx, actorOf(alice), recipe.ID)
	require.NoError(t, err)
	assert.False(t, forAlice.IsFavorited)
	assert.False(t, forAlice.Author.IsSubscribed)

	anonymous, err := env.recipes.Get(ctx, types.Actor{}, recipe.ID)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFavorited)
	assert.False(t, anonymous.IsInShoppingCart)
	assert.False(t, anonymous.Author.IsSubscribed)
}
