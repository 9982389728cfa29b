package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is reference data seeded by the loader; requests never write it.
type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Color string    `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// RecipeTag is the join row between a recipe and one of its tags.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}
