package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

var (
	errInvalidCredentials = errs.Unauthenticated("unable to log in with provided credentials")
	errInvalidToken       = errs.Unauthenticated("invalid token")
)

// TokenRevoker remembers logged-out token ids until the token would have
// expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenRevoker keeps revoked token ids as expiring redis keys.
type RedisTokenRevoker struct {
	client *redis.Client
}

func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client}
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

func (r *RedisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	ttl       time.Duration
	revoker   TokenRevoker
	validator *validation.Validator
	now       func() time.Time
}

// NewAuthService builds the auth service. revoker may be nil, in which case
// logout is accepted but tokens stay valid until they expire.
func NewAuthService(db *gorm.DB, jwtSecret string, ttl time.Duration, revoker TokenRevoker, v *validation.Validator) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		revoker:   revoker,
		validator: v,
		now:       time.Now,
	}
}

// Register creates a user account.
func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*types.UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		fields["email"] = "user with this email already exists"
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		fields["username"] = "user with this username already exists"
	}
	if len(fields) > 0 {
		return nil, errs.ValidationFields(fields)
	}

	hash, err := hashPassword("password", req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Validation("username", "user with this email or username already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("component", "auth").Str("user_id", user.ID.String()).Msg("user registered")
	resp := userResponse(user, false)
	return &resp, nil
}

// Login exchanges email and password for a signed token.
func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &types.TokenResponse{AuthToken: token}, nil
}

// GenerateToken signs an HS256 token for user with a fresh token id.
func (s *AuthService) GenerateToken(user models.User) (string, error) {
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token and resolves it to an actor. The
// user must still exist and the token must not have been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.Actor, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, errInvalidToken
		}
	}

	var user models.User
	err = s.db.WithContext(ctx).Select("id", "username", "is_admin").First(&user, "id = ?", claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	actor := &types.Actor{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		actor.ExpiresAt = claims.ExpiresAt.Time
	}
	return actor, nil
}

// Logout revokes the actor's current token.
func (s *AuthService) Logout(ctx context.Context, actor types.Actor) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	if s.revoker == nil || actor.TokenID == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, actor.TokenID, actor.ExpiresAt.Sub(s.now()))
}

func (s *AuthService) SetPassword(ctx context.Context, actor types.Actor, req types.SetPasswordRequest) error {
	if actor.IsAnonymous() {
		return errs.ErrUnauthenticated
	}
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return errs.Validation("current_password", "current password is incorrect")
	}

	hash, err := hashPassword("new_password", req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// hashPassword reports bcrypt's 72 byte input limit as a field error; the
// validator counts runes, so multibyte passwords can still exceed it.
func hashPassword(field, password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, errs.Validation(field, "password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}
