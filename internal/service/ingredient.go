package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns ingredients whose name starts with prefix, ignoring case. An
// empty prefix returns all of them.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	// SQLite's LOWER only folds ASCII, so non-ASCII names are matched in Go there.
	foldInGo := prefix != "" && s.db.Dialector.Name() == "sqlite"
	if prefix != "" && !foldInGo {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	out := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		if foldInGo && !strings.HasPrefix(strings.ToLower(i.Name), prefix) {
			continue
		}
		out = append(out, ingredientResponse(i))
	}
	return out, nil
}

func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("ingredient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	resp := ingredientResponse(ingredient)
	return &resp, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
