package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var errUserNotFound = errs.NotFound("user not found")

// UserService serves user profiles and subscriptions between users.
type UserService struct {
	db  *gorm.DB
	rel *Relations
}

func NewUserService(db *gorm.DB, rel *Relations) *UserService {
	return &UserService{db: db, rel: rel}
}

func (s *UserService) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*types.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.rel.Subscriptions.Exists(ctx, actor.ID, user.ID)
	if err != nil {
		return nil, err
	}
	resp := userResponse(*user, subscribed)
	return &resp, nil
}

// Me returns the actor's own profile.
func (s *UserService) Me(ctx context.Context, actor types.Actor) (*types.UserResponse, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}
	return s.Get(ctx, actor, actor.ID)
}

func (s *UserService) List(ctx context.Context, actor types.Actor, page types.Page) ([]types.UserResponse, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("username").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.rel.Subscriptions.TargetsAmong(ctx, actor.ID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u, subscribed[u.ID]))
	}
	return out, total, nil
}

// Subscribe makes the actor follow authorID and returns the author with up to
// recipesLimit of their recipes (all when recipesLimit <= 0).
func (s *UserService) Subscribe(ctx context.Context, actor types.Actor, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}

	var author *models.User
	load := func(ctx context.Context) error {
		var err error
		author, err = s.find(ctx, authorID)
		return err
	}
	if err := s.rel.Subscriptions.Add(ctx, actor.ID, authorID, load); err != nil {
		return nil, err
	}

	subs, err := s.subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, actor types.Actor, authorID uuid.UUID) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	if _, err := s.find(ctx, authorID); err != nil {
		return err
	}
	return s.rel.Subscriptions.Remove(ctx, actor.ID, authorID)
}

// Subscriptions lists the authors the actor follows, ordered by username.
func (s *UserService) Subscriptions(ctx context.Context, actor types.Actor, page types.Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	if actor.IsAnonymous() {
		return nil, 0, errs.ErrUnauthenticated
	}

	following := s.db.Model(&models.Subscribe{}).Select("author_id").Where("user_id = ?", actor.ID)
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN (?)", following).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	if err := q.Order("username").Limit(page.Limit).Offset(page.Offset()).Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	out, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// subscriptions renders authors as seen by someone subscribed to all of them.
func (s *UserService) subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count recipes: %w", err)
		}

		q := s.db.WithContext(ctx).
			Select("id", "name", "image", "cooking_time").
			Where("author_id = ?", author.ID).
			Order("pub_date DESC")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to list author recipes: %w", err)
		}

		short := make([]types.ShortRecipeResponse, 0, len(recipes))
		for _, r := range recipes {
			short = append(short, shortRecipeResponse(r))
		}
		out = append(out, types.SubscriptionResponse{
			UserResponse: userResponse(author, true),
			Recipes:      short,
			RecipesCount: count,
		})
	}
	return out, nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
