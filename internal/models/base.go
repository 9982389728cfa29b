package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row a fresh UUID when the caller did not set one.
// Keys are generated in Go so SQLite and PostgreSQL behave the same.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&IngredientRecipe{},
		&Favorite{},
		&ShoppingCart{},
		&Subscribe{},
	}
}

// SetupJoinTables registers the explicit recipe_tags join model. It must run
// before AutoMigrate and before any query that touches Recipe.Tags.
func SetupJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&Recipe{}, "Tags", &RecipeTag{})
}
