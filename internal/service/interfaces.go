package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.UserResponse, error)
	Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error)
	Logout(ctx context.Context, actor types.Actor) error
	SetPassword(ctx context.Context, actor types.Actor, req types.SetPasswordRequest) error
	ValidateToken(ctx context.Context, token string) (*types.Actor, error)
}

// IUserService defines the interface for user profiles and subscriptions
type IUserService interface {
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.UserResponse, error)
	Me(ctx context.Context, actor types.Actor) (*types.UserResponse, error)
	List(ctx context.Context, actor types.Actor, page types.Page) ([]types.UserResponse, int64, error)
	Subscribe(ctx context.Context, actor types.Actor, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, actor types.Actor, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, actor types.Actor, page types.Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, actor types.Actor, in types.RecipeInput) (*types.RecipeResponse, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, in types.RecipeInput) (*types.RecipeResponse, error)
	Delete(ctx context.Context, actor types.Actor, id uuid.UUID) error
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.RecipeResponse, error)
	List(ctx context.Context, actor types.Actor, filter types.RecipeFilter, page types.Page) ([]types.RecipeResponse, int64, error)
	AddFavorite(ctx context.Context, actor types.Actor, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)
	RemoveFavorite(ctx context.Context, actor types.Actor, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, actor types.Actor, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)
	RemoveFromCart(ctx context.Context, actor types.Actor, recipeID uuid.UUID) error
}

type ITagService interface {
	List(ctx context.Context) ([]types.TagResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*types.TagResponse, error)
}

type IIngredientService interface {
	List(ctx context.Context, prefix string) ([]types.IngredientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*types.IngredientResponse, error)
}

// IShoppingListService defines the interface for building shopping lists
type IShoppingListService interface {
	Build(ctx context.Context, actor types.Actor) (*ShoppingList, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ ITagService          = (*TagService)(nil)
	_ IIngredientService   = (*IngredientService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ TokenRevoker         = (*RedisTokenRevoker)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
	_ ImageStore           = (*LocalImageStore)(nil)
)
