package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
)

// RelationRules describes the user-facing behaviour of one relation kind.
type RelationRules struct {
	// Exists is reported when the pair is already present.
	Exists string
	// Missing is reported when removing a pair that is not present.
	Missing string
	// Precheck runs before anything touches storage. Optional.
	Precheck func(userID, targetID uuid.UUID) error
}

// Toggle implements add/remove over a (user, target) relation table. T is the
// row model; PT is its pointer type, which carries the relation methods.
type Toggle[T any, PT interface {
	*T
	models.UserRelation
}] struct {
	db    *gorm.DB
	rules RelationRules
}

func NewToggle[T any, PT interface {
	*T
	models.UserRelation
}](db *gorm.DB, rules RelationRules) *Toggle[T, PT] {
	return &Toggle[T, PT]{db: db, rules: rules}
}

func (t *Toggle[T, PT]) row() PT {
	return PT(new(T))
}

func (t *Toggle[T, PT]) pairScope(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Exists reports whether the (user, target) pair is present.
func (t *Toggle[T, PT]) Exists(ctx context.Context, userID, targetID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	err := t.db.WithContext(ctx).Model(t.row()).
		Scopes(t.pairScope(userID)).
		Where(t.row().TargetColumn()+" = ?", targetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", t.row().TableName(), err)
	}
	return count > 0, nil
}

// TargetsAmong returns which of targetIDs the user is related to. The
// anonymous user (uuid.Nil) is related to nothing.
func (t *Toggle[T, PT]) TargetsAmong(ctx context.Context, userID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool)
	if userID == uuid.Nil || len(targetIDs) == 0 {
		return found, nil
	}

	col := t.row().TargetColumn()
	var ids []uuid.UUID
	err := t.db.WithContext(ctx).Model(t.row()).
		Scopes(t.pairScope(userID)).
		Where(col+" IN ?", targetIDs).
		Pluck(col, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", t.row().TableName(), err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Add creates the pair. load runs after the duplicate check and must return a
// NotFound error when the target does not exist. A unique-index violation from
// a concurrent add is reported the same way as a pair seen up front.
func (t *Toggle[T, PT]) Add(ctx context.Context, userID, targetID uuid.UUID, load func(context.Context) error) error {
	if t.rules.Precheck != nil {
		if err := t.rules.Precheck(userID, targetID); err != nil {
			return err
		}
	}

	exists, err := t.Exists(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict(t.rules.Exists)
	}

	if load != nil {
		if err := load(ctx); err != nil {
			return err
		}
	}

	row := t.row()
	row.Bind(userID, targetID)
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict(t.rules.Exists)
		}
		return fmt.Errorf("failed to create %s: %w", row.TableName(), err)
	}
	return nil
}

// Remove deletes the pair, failing with a 400-class error when it is absent.
func (t *Toggle[T, PT]) Remove(ctx context.Context, userID, targetID uuid.UUID) error {
	res := t.db.WithContext(ctx).
		Scopes(t.pairScope(userID)).
		Where(t.row().TargetColumn()+" = ?", targetID).
		Delete(t.row())
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", t.row().TableName(), res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Conflict(t.rules.Missing)
	}
	return nil
}

// Relations bundles the three toggles so services share one set.
type Relations struct {
	Favorites     *Toggle[models.Favorite, *models.Favorite]
	Cart          *Toggle[models.ShoppingCart, *models.ShoppingCart]
	Subscriptions *Toggle[models.Subscribe, *models.Subscribe]
}

func NewRelations(db *gorm.DB) *Relations {
	return &Relations{
		Favorites: NewToggle[models.Favorite](db, RelationRules{
			Exists:  "recipe already in favorites",
			Missing: "recipe is not in favorites",
		}),
		Cart: NewToggle[models.ShoppingCart](db, RelationRules{
			Exists:  "recipe already in shopping cart",
			Missing: "recipe is not in shopping cart",
		}),
		Subscriptions: NewToggle[models.Subscribe](db, RelationRules{
			Exists:  "already subscribed",
			Missing: "not subscribed",
			Precheck: func(userID, authorID uuid.UUID) error {
				if userID == authorID {
					return errs.Validation("author", "cannot subscribe to yourself")
				}
				return nil
			},
		}),
	}
}

// isUniqueViolation recognises duplicate-key failures. TranslateError covers
// the gorm drivers; the text match covers errors surfaced without translation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
