package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users    service.IUserService
	auth     service.IAuthService
	pageSize int
}

func NewUserHandler(users service.IUserService, auth service.IAuthService, pageSize int) *UserHandler {
	return &UserHandler{users: users, auth: auth, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.RequireAuth(h.auth)
	optional := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.GET("", optional, h.List)
		users.POST("", h.Register)
		users.GET("/me", required, h.Me)
		users.POST("/set_password", required, h.SetPassword)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.Get)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) List(c *gin.Context) {
	page, err := pageFrom(c, h.pageSize)
	if err != nil {
		respond(c, err)
		return
	}
	users, total, err := h.users.List(c.Request.Context(), middleware.ActorFrom(c), page)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, users, total, page))
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), middleware.ActorFrom(c), req); err != nil {
		respond(c, err)
		return
	}
	noContent(c)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	page, err := pageFrom(c, h.pageSize)
	if err != nil {
		respond(c, err)
		return
	}
	limit, err := recipesLimit(c)
	if err != nil {
		respond(c, err)
		return
	}
	subs, total, err := h.users.Subscriptions(c.Request.Context(), middleware.ActorFrom(c), page, limit)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, subs, total, page))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, err := recipesLimit(c)
	if err != nil {
		respond(c, err)
		return
	}
	sub, err := h.users.Subscribe(c.Request.Context(), middleware.ActorFrom(c), id, limit)
	if err != nil {
		respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Unsubscribe(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		respond(c, err)
		return
	}
	noContent(c)
}
