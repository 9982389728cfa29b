package types

import "github.com/google/uuid"

// RegisterRequest represents the payload for user registration
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest represents the payload for obtaining a token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// IngredientAmount is one {id, amount} entry of a recipe write payload.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int       `json:"amount" validate:"min=1,max=100"`
}

// RecipeInput is the write payload for creating and updating recipes. Every
// field must be supplied on update as well; there is no partial merge.
type RecipeInput struct {
	Name        string             `json:"name" validate:"required,max=200"`
	Text        string             `json:"text" validate:"required"`
	Image       string             `json:"image" validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"min=1,max=1440"`
	Tags        []uuid.UUID        `json:"tags" validate:"required,min=1,unique,dive,required"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
}

// RecipeFilter holds the list filters accepted by GET /recipes.
type RecipeFilter struct {
	Tags             []string
	AuthorID         *uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
	Query            string
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}
