package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes  service.IRecipeService
	shopping service.IShoppingListService
	auth     middleware.TokenValidator
	create   middleware.Limiter
	modify   middleware.Limiter
	pageSize int
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	shopping service.IShoppingListService,
	auth middleware.TokenValidator,
	create, modify middleware.Limiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		shopping: shopping,
		auth:     auth,
		create:   create,
		modify:   modify,
		pageSize: pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.RequireAuth(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.List)
		recipes.POST("", required, limited(h.create), h.Create)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.Get)
		recipes.PATCH("/:id", required, limited(h.modify), h.Update)
		recipes.DELETE("/:id", required, h.Delete)
		recipes.POST("/:id/favorite", required, h.AddFavorite)
		recipes.DELETE("/:id/favorite", required, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromCart)
	}
}

func limited(l middleware.Limiter) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(l)
}

func (h *RecipeHandler) List(c *gin.Context) {
	page, err := pageFrom(c, h.pageSize)
	if err != nil {
		respond(c, err)
		return
	}

	filter := types.RecipeFilter{
		Tags:             c.QueryArray("tags"),
		IsFavorited:      flag(c, "is_favorited"),
		IsInShoppingCart: flag(c, "is_in_shopping_cart"),
		Query:            c.Query("q"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := uuid.Parse(raw)
		if err != nil {
			respond(c, errs.Validation("author", "author must be a user id"))
			return
		}
		filter.AuthorID = &author
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), middleware.ActorFrom(c), filter, page)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, recipes, total, page))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var in types.RecipeInput
	if !bindJSON(c, &in) {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in types.RecipeInput
	if !bindJSON(c, &in) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), middleware.ActorFrom(c), id, in)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respond(c, err)
		return
	}
	noContent(c)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.add(c, h.recipes.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.remove(c, h.recipes.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.add(c, h.recipes.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.remove(c, h.recipes.RemoveFromCart)
}

type recipeAdder func(ctx context.Context, actor types.Actor, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)

type recipeRemover func(ctx context.Context, actor types.Actor, recipeID uuid.UUID) error

func (h *RecipeHandler) add(c *gin.Context, add recipeAdder) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	short, err := add(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) remove(c *gin.Context, remove recipeRemover) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respond(c, err)
		return
	}
	noContent(c)
}

// DownloadShoppingCart sends the aggregated cart as an attachment, plain text
// by default or CSV with ?format=csv.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	list, err := h.shopping.Build(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respond(c, err)
		return
	}
	body, contentType, filename, err := list.Render(c.Query("format"))
	if err != nil {
		respond(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, body)
}
