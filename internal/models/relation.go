package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRelation is a (user, target) row guarded by a unique index. Favorite,
// ShoppingCart and Subscribe all share this shape.
type UserRelation interface {
	TableName() string
	// TargetColumn names the column holding the non-user side of the pair.
	TargetColumn() string
	Bind(userID, targetID uuid.UUID)
}

type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string    { return "favorites" }
func (Favorite) TargetColumn() string { return "recipe_id" }

func (f *Favorite) Bind(userID, recipeID uuid.UUID) {
	f.UserID, f.RecipeID = userID, recipeID
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	assignID(&f.ID)
	return nil
}

type ShoppingCart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingCart) TableName() string    { return "shopping_carts" }
func (ShoppingCart) TargetColumn() string { return "recipe_id" }

func (s *ShoppingCart) Bind(userID, recipeID uuid.UUID) {
	s.UserID, s.RecipeID = userID, recipeID
}

func (s *ShoppingCart) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Subscribe links a follower (UserID) to an author.
type Subscribe struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscribe_user_author" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscribe_user_author;index;check:chk_subscribe_not_self,user_id <> author_id" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Subscribe) TableName() string    { return "subscribes" }
func (Subscribe) TargetColumn() string { return "author_id" }

func (s *Subscribe) Bind(userID, authorID uuid.UUID) {
	s.UserID, s.AuthorID = userID, authorID
}

func (s *Subscribe) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
