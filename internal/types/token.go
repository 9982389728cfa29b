package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT token. RegisteredClaims.ID
// carries the token id used for revocation on logout.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Actor is the requester every service operation acts on behalf of. The zero
// value is the anonymous requester.
type Actor struct {
	ID        uuid.UUID
	Username  string
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}

// CanModify reports whether the actor may change content owned by authorID.
func (a Actor) CanModify(authorID uuid.UUID) bool {
	return !a.IsAnonymous() && (a.IsAdmin || a.ID == authorID)
}
