package service_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestTagService(t *testing.T) {
	env := newTestEnv(t)
	lunch := testhelpers.CreateTag(t, env.db, "lunch", "#49B64E")
	testhelpers.CreateTag(t, env.db, "breakfast", "#E26C2D")
	tags := service.NewTagService(env.db)

	list, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "breakfast", list[0].Name)

	got, err := tags.Get(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TagResponse{ID: lunch.ID, Name: "lunch", Color: "#49B64E", Slug: "lunch"}, *got)

	_, err = tags.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIngredientSearchByPrefix(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateIngredient(t, env.db, "Sugar", "g")
	testhelpers.CreateIngredient(t, env.db, "sugar syrup", "ml")
	testhelpers.CreateIngredient(t, env.db, "brown sugar", "g")
	testhelpers.CreateIngredient(t, env.db, "50% cream", "ml")
	ingredients := service.NewIngredientService(env.db)

	got, err := ingredients.List(ctx, "SUG")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, i := range got {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"Sugar", "sugar syrup"}, names)

	got, err = ingredients.List(ctx, "50%")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = ingredients.List(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards are matched literally")

	all, err := ingredients.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = ingredients.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIngredientSearchFoldsNonASCII(t *testing.T) {
	env := newTestEnv(t)
	testhelpers.CreateIngredient(t, env.db, "Молоко", "мл")
	testhelpers.CreateIngredient(t, env.db, "мука", "г")
	ingredients := service.NewIngredientService(env.db)

	got, err := ingredients.List(ctx, "мол")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Молоко", got[0].Name)

	got, err = ingredients.List(ctx, "МУ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "мука", got[0].Name)
}

func TestLoader(t *testing.T) {
	env := newTestEnv(t)
	loader := service.NewLoader(env.db)

	tagsCSV := "name,color,slug\nBreakfast,#E26C2D,breakfast\nLunch,#49B64E,lunch\n,,\n"
	n, err := loader.LoadTags(ctx, strings.NewReader(tagsCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = loader.LoadTags(ctx, strings.NewReader(tagsCSV))
	require.NoError(t, err)
	assert.Zero(t, n, "existing tags are skipped")

	ingredientsCSV := "salt,g\nsugar,g\nsalt,g\nmilk,ml\n"
	n, err = loader.LoadIngredients(ctx, strings.NewReader(ingredientsCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := service.NewIngredientService(env.db).List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = loader.LoadIngredients(ctx, strings.NewReader("salt,g,extra\n"))
	assert.Error(t, err)
}

func TestUserServiceList(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")
	bob := testhelpers.CreateUser(t, env.db, "bob")
	testhelpers.CreateUser(t, env.db, "carol")

	_, err := env.users.Subscribe(ctx, actorOf(bob), alice.ID, 0)
	require.NoError(t, err)

	list, total, err := env.users.List(ctx, actorOf(bob), types.Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.True(t, list[0].IsSubscribed)
	assert.False(t, list[1].IsSubscribed)

	me, err := env.users.Me(ctx, actorOf(bob))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, me.ID)

	_, err = env.users.Me(ctx, types.Actor{})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	forBob, err := env.users.Get(ctx, actorOf(bob), alice.ID)
	require.NoError(t, err)
	assert.True(t, forBob.IsSubscribed)

	anonymous, err := env.users.Get(ctx, types.Actor{}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", anonymous.Username)
	assert.False(t, anonymous.IsSubscribed)

	_, err = env.users.Get(ctx, types.Actor{}, uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
