package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1440
	MinAmount      = 1
	MaxAmount      = 100
)

type Recipe struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"author_id"`
	Name        string           `gorm:"size:200;not null" json:"name"`
	Text        string           `gorm:"type:text;not null" json:"text"`
	Image       string           `gorm:"size:500;not null" json:"image"`
	CookingTime int              `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1 AND cooking_time <= 1440" json:"cooking_time"`
	PubDate     time.Time        `gorm:"autoCreateTime;not null;index" json:"pub_date"`
	Embedding   *pgvector.Vector `gorm:"type:vector(16)" json:"-"`

	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
	Ingredients []IngredientRecipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}
