package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var errRecipeNotFound = errs.NotFound("recipe not found")

// RecipeService owns recipes together with their tag and ingredient
// associations, and the favorite and shopping-cart toggles on them.
type RecipeService struct {
	db        *gorm.DB
	rel       *Relations
	images    *ImageService
	validator *validation.Validator
	ser       recipeSerializer
}

func NewRecipeService(db *gorm.DB, rel *Relations, images *ImageService, v *validation.Validator) *RecipeService {
	return &RecipeService{
		db:        db,
		rel:       rel,
		images:    images,
		validator: v,
		ser:       recipeSerializer{rel: rel},
	}
}

// Create stores a recipe authored by the actor and returns its read representation.
func (s *RecipeService) Create(ctx context.Context, actor types.Actor, in types.RecipeInput) (*types.RecipeResponse, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}
	if !IsDataURI(in.Image) {
		return nil, errs.Validation("image", "image must be a base64 data URI")
	}

	image, err := s.images.StoreDataURI(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    actor.ID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       image,
		CookingTime: in.CookingTime,
		Embedding:   GenerateEmbedding(in.Name + " " + in.Text),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return replaceAssociations(tx, recipe.ID, in)
	})
	if err != nil {
		s.images.Remove(ctx, image)
		return nil, err
	}

	log.Info().Str("component", "recipes").Str("recipe_id", recipe.ID.String()).Str("author_id", actor.ID.String()).Msg("recipe created")
	return s.Get(ctx, actor, recipe.ID)
}

// Update overwrites every field of the recipe and fully replaces its tag and
// ingredient associations. Only the author or an admin may update.
func (s *RecipeService) Update(ctx context.Context, actor types.Actor, id uuid.UUID, in types.RecipeInput) (*types.RecipeResponse, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(current.AuthorID) {
		return nil, errs.ErrPermissionDenied
	}
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}

	image := current.Image
	switch {
	case in.Image == current.Image:
	case IsDataURI(in.Image):
		if image, err = s.images.StoreDataURI(ctx, in.Image); err != nil {
			return nil, err
		}
	default:
		return nil, errs.Validation("image", "image must be a base64 data URI or the current image")
	}

	updates := models.Recipe{
		Name:        in.Name,
		Text:        in.Text,
		Image:       image,
		CookingTime: in.CookingTime,
		Embedding:   GenerateEmbedding(in.Name + " " + in.Text),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{ID: id}).
			Select("name", "text", "image", "cooking_time", "embedding").
			Updates(&updates).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientRecipe{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return replaceAssociations(tx, id, in)
	})
	if err != nil {
		if image != current.Image {
			s.images.Remove(ctx, image)
		}
		return nil, err
	}
	if image != current.Image {
		s.images.Remove(ctx, current.Image)
	}

	log.Info().Str("component", "recipes").Str("recipe_id", id.String()).Msg("recipe updated")
	return s.Get(ctx, actor, id)
}

// Delete removes the recipe and everything that references it.
func (s *RecipeService) Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(current.AuthorID) {
		return errs.ErrPermissionDenied
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.RecipeTag{}, &models.IngredientRecipe{}, &models.Favorite{}, &models.ShoppingCart{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return fmt.Errorf("failed to delete recipe dependents: %w", err)
			}
		}
		if err := tx.Delete(&models.Recipe{ID: id}).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.images.Remove(ctx, current.Image)
	log.Info().Str("component", "recipes").Str("recipe_id", id.String()).Msg("recipe deleted")
	return nil
}

// Get returns the read representation of one recipe for the actor.
func (s *RecipeService) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.withDetails(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return s.ser.one(ctx, actor, recipe)
}

// List returns one page of recipes, newest first, and the total match count.
func (s *RecipeService) List(ctx context.Context, actor types.Actor, filter types.RecipeFilter, page types.Page) ([]types.RecipeResponse, int64, error) {
	if (filter.IsFavorited || filter.IsInShoppingCart) && actor.IsAnonymous() {
		return []types.RecipeResponse{}, 0, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	if len(filter.Tags) > 0 {
		q = q.Where("recipes.id IN (?)", s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.Tags))
	}
	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.IsFavorited {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", actor.ID))
	}
	if filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", actor.ID))
	}
	query := strings.TrimSpace(filter.Query)
	if query != "" {
		q = q.Where("LOWER(recipes.name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(query))+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	ordered := q.Order("recipes.pub_date DESC")
	if query != "" && s.db.Dialector.Name() == "postgres" {
		// Rank name matches by similarity before falling back to recency.
		ordered = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:  "recipes.embedding <-> ?, recipes.pub_date DESC",
				Vars: []interface{}{GenerateEmbedding(query)},
			},
		})
	}

	var recipes []models.Recipe
	err := s.withDetails(ordered).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	out, err := s.ser.many(ctx, actor, recipes)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *RecipeService) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) find(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id", "image").First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errRecipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

// checkInput validates the payload shape and that every referenced tag and
// ingredient exists. Unknown tags are a field error; unknown ingredients are
// reported as not found.
func (s *RecipeService) checkInput(ctx context.Context, in types.RecipeInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	var tagCount int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", in.Tags).Count(&tagCount).Error; err != nil {
		return fmt.Errorf("failed to check tags: %w", err)
	}
	if int(tagCount) != len(in.Tags) {
		return errs.Validation("tags", "tags must reference existing tags")
	}

	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, entry := range in.Ingredients {
		ids = append(ids, entry.ID)
	}
	var found []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to check ingredients: %w", err)
	}
	if len(found) != len(ids) {
		known := make(map[uuid.UUID]bool, len(found))
		for _, id := range found {
			known[id] = true
		}
		for _, id := range ids {
			if !known[id] {
				return errs.NotFound(fmt.Sprintf("ingredient %s not found", id))
			}
		}
	}
	return nil
}

// replaceAssociations inserts the tag and ingredient rows for a recipe whose
// previous rows, if any, have already been removed.
func replaceAssociations(tx *gorm.DB, recipeID uuid.UUID, in types.RecipeInput) error {
	tags := make([]models.RecipeTag, 0, len(in.Tags))
	for _, tagID := range in.Tags {
		tags = append(tags, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
	}
	if err := tx.Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to set recipe tags: %w", err)
	}

	amounts := make([]models.IngredientRecipe, 0, len(in.Ingredients))
	for _, entry := range in.Ingredients {
		amounts = append(amounts, models.IngredientRecipe{
			RecipeID:     recipeID,
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&amounts).Error; err != nil {
		return fmt.Errorf("failed to set recipe ingredients: %w", err)
	}
	return nil
}
