package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func tagResponse(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientResponse(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func userResponse(u models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func shortRecipeResponse(r models.Recipe) types.ShortRecipeResponse {
	return types.ShortRecipeResponse{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// recipeSerializer renders recipes for one requester, resolving the
// per-requester flags in one query per relation.
type recipeSerializer struct {
	rel *Relations
}

func (s recipeSerializer) many(ctx context.Context, actor types.Actor, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.rel.Favorites.TargetsAmong(ctx, actor.ID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.rel.Cart.TargetsAmong(ctx, actor.ID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.rel.Subscriptions.TargetsAmong(ctx, actor.ID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, recipeResponse(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}
	return out, nil
}

func (s recipeSerializer) one(ctx context.Context, actor types.Actor, recipe models.Recipe) (*types.RecipeResponse, error) {
	out, err := s.many(ctx, actor, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func recipeResponse(r models.Recipe, favorited, inCart, subscribed bool) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, tagResponse(t))
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ir := range r.Ingredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              ir.IngredientID,
			Name:            ir.Ingredient.Name,
			MeasurementUnit: ir.Ingredient.MeasurementUnit,
			Amount:          ir.Amount,
		})
	}
	sort.Slice(ingredients, func(i, j int) bool { return ingredients[i].Name < ingredients[j].Name })

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           userResponse(r.Author, subscribed),
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		PubDate:          r.PubDate,
	}
}
