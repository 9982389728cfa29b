package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// Wire builds the services and HTTP options from configuration. rdb may be
// nil; rate limiting is then kept in process and logout cannot revoke tokens.
func Wire(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (api.Services, api.Options, error) {
	store, err := imageStore(ctx, cfg)
	if err != nil {
		return api.Services{}, api.Options{}, err
	}

	v := validation.New()
	rel := service.NewRelations(db)

	var revoker service.TokenRevoker
	if rdb != nil {
		revoker = service.NewRedisTokenRevoker(rdb)
	}

	svc := api.Services{
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, revoker, v),
		Users:       service.NewUserService(db, rel),
		Recipes:     service.NewRecipeService(db, rel, service.NewImageService(store), v),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Shopping:    service.NewShoppingListService(db),
	}

	opts := api.Options{
		PageSize:      cfg.PageSize,
		CreateLimiter: newLimiter(rdb, cfg.RecipeCreateLimit, cfg, "rate_limit:recipe_creation"),
		ModifyLimiter: newLimiter(rdb, cfg.RecipeModifyLimit, cfg, "rate_limit:recipe_modification"),
	}
	return svc, opts, nil
}

func imageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3: %w", err)
		}
		log.Info().Str("component", "server").Str("bucket", s3cfg.BucketName).Msg("storing images in S3")
		return service.NewS3ImageStore(s3cfg), nil
	default:
		log.Info().Str("component", "server").Str("dir", cfg.MediaDir).Msg("storing images on local disk")
		return service.NewLocalImageStore(cfg.MediaDir, cfg.MediaURL), nil
	}
}

func newLimiter(rdb *redis.Client, limit int, cfg *config.Config, prefix string) middleware.Limiter {
	rl := middleware.RateLimitConfig{Window: cfg.RateLimitWindow, Limit: limit, KeyPrefix: prefix}
	if rdb != nil {
		return middleware.NewRedisLimiter(rdb, rl)
	}
	return middleware.NewLocalLimiter(rl)
}
