package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// AddFavorite marks a recipe as a favorite of the actor.
func (s *RecipeService) AddFavorite(ctx context.Context, actor types.Actor, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, actor, recipeID, s.rel.Favorites.Add)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, actor types.Actor, recipeID uuid.UUID) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	return s.rel.Favorites.Remove(ctx, actor.ID, recipeID)
}

// AddToCart puts a recipe into the actor's shopping cart.
func (s *RecipeService) AddToCart(ctx context.Context, actor types.Actor, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, actor, recipeID, s.rel.Cart.Add)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, actor types.Actor, recipeID uuid.UUID) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	return s.rel.Cart.Remove(ctx, actor.ID, recipeID)
}

type addFunc func(ctx context.Context, userID, targetID uuid.UUID, load func(context.Context) error) error

func (s *RecipeService) addRelation(ctx context.Context, actor types.Actor, recipeID uuid.UUID, add addFunc) (*types.ShortRecipeResponse, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}

	var recipe models.Recipe
	load := func(ctx context.Context) error {
		err := s.db.WithContext(ctx).Select("id", "name", "image", "cooking_time").First(&recipe, "id = ?", recipeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errRecipeNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get recipe: %w", err)
		}
		return nil
	}

	if err := add(ctx, actor.ID, recipeID, load); err != nil {
		return nil, err
	}
	short := shortRecipeResponse(recipe)
	return &short, nil
}
