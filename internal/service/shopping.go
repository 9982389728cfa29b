package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/errs"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Shopping list output formats.
const (
	FormatText = "txt"
	FormatCSV  = "csv"
)

var errEmptyCart = errs.Invalid("shopping cart is empty")

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingList is the aggregated contents of one user's cart.
type ShoppingList struct {
	Owner       models.User
	GeneratedAt time.Time
	Items       []ShoppingItem
}

type ShoppingListService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db, now: time.Now}
}

// Build sums ingredient amounts over every recipe in the actor's cart,
// grouped by ingredient name and measurement unit.
func (s *ShoppingListService) Build(ctx context.Context, actor types.Actor) (*ShoppingList, error) {
	if actor.IsAnonymous() {
		return nil, errs.ErrUnauthenticated
	}

	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("ingredient_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_recipes.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = ingredient_recipes.recipe_id").
		Where("shopping_carts.user_id = ?", actor.ID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	if len(items) == 0 {
		return nil, errEmptyCart
	}

	sortItems(items)
	return &ShoppingList{Owner: owner, GeneratedAt: s.now(), Items: items}, nil
}

// sortItems orders by name then unit using root-locale collation, so the
// order does not depend on the database's collation.
func sortItems(items []ShoppingItem) {
	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		if n := c.CompareString(items[i].Name, items[j].Name); n != 0 {
			return n < 0
		}
		return c.CompareString(items[i].MeasurementUnit, items[j].MeasurementUnit) < 0
	})
}

// Render writes the list in the given format and returns the body together
// with its content type and download filename.
func (l *ShoppingList) Render(format string) (body []byte, contentType, filename string, err error) {
	switch format {
	case "", FormatText:
		return []byte(l.Text()), "text/plain; charset=utf-8", l.Filename(FormatText), nil
	case FormatCSV:
		body, err := l.CSV()
		if err != nil {
			return nil, "", "", err
		}
		return body, "text/csv; charset=utf-8", l.Filename(FormatCSV), nil
	default:
		return nil, "", "", errs.Validation("format", "format must be one of txt, csv")
	}
}

// Text renders the plain-text report.
func (l *ShoppingList) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for: %s\n\n", l.Owner.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", l.GeneratedAt.Format("2006-01-02"))

	lines := make([]string, 0, len(l.Items))
	for _, it := range l.Items {
		lines = append(lines, fmt.Sprintf("- %s (%s) - %d", it.Name, it.MeasurementUnit, it.Amount))
	}
	b.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "\n\nFoodgram (%d)", l.GeneratedAt.Year())
	return b.String()
}

func (l *ShoppingList) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"name", "measurement_unit", "amount"}); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	for _, it := range l.Items {
		if err := w.Write([]string{it.Name, it.MeasurementUnit, strconv.Itoa(it.Amount)}); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *ShoppingList) Filename(format string) string {
	if format == "" {
		format = FormatText
	}
	return l.Owner.Username + "_shopping_list." + format
}
