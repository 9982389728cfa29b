package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

// ReferenceHandler serves the read-only tag and ingredient catalogues.
type ReferenceHandler struct {
	tags        service.ITagService
	ingredients service.IIngredientService
}

func NewReferenceHandler(tags service.ITagService, ingredients service.IIngredientService) *ReferenceHandler {
	return &ReferenceHandler{tags: tags, ingredients: ingredients}
}

func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.ListIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *ReferenceHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *ReferenceHandler) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// ListIngredients filters by case-insensitive name prefix via ?name=.
func (h *ReferenceHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *ReferenceHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
