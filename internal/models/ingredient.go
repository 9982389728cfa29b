package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit;index" json:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// IngredientRecipe carries the amount of one ingredient used by a recipe.
// Rows are replaced wholesale whenever the recipe is updated.
type IngredientRecipe struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_recipe" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_recipe;index" json:"ingredient_id"`
	Amount       int        `gorm:"not null;check:chk_ingredient_recipe_amount,amount >= 1 AND amount <= 100" json:"amount"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient"`
}

func (IngredientRecipe) TableName() string {
	return "ingredient_recipes"
}

func (ir *IngredientRecipe) BeforeCreate(tx *gorm.DB) error {
	assignID(&ir.ID)
	return nil
}
