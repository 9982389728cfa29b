package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services are the business services the HTTP surface is built on.
type Services struct {
	Auth        service.IAuthService
	Users       service.IUserService
	Recipes     service.IRecipeService
	Tags        service.ITagService
	Ingredients service.IIngredientService
	Shopping    service.IShoppingListService
}

// Options tune the HTTP surface. Nil limiters disable rate limiting.
type Options struct {
	PageSize      int
	CreateLimiter middleware.Limiter
	ModifyLimiter middleware.Limiter
}

// SetupAPI mounts every handler under /api/v1.
func SetupAPI(router *gin.Engine, svc Services, opts Options) {
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(svc.Auth).RegisterRoutes(v1)
		NewUserHandler(svc.Users, svc.Auth, opts.PageSize).RegisterRoutes(v1)
		NewReferenceHandler(svc.Tags, svc.Ingredients).RegisterRoutes(v1)
		NewRecipeHandler(svc.Recipes, svc.Shopping, svc.Auth, opts.CreateLimiter, opts.ModifyLimiter, opts.PageSize).RegisterRoutes(v1)
	}
}
