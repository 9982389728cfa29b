package testhelpers

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "s3cret-pass"

var fixtureHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First" + username,
		LastName:     "Last" + username,
		PasswordHash: fixtureHash,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := CreateUser(t, db, username)
	require.NoError(t, db.Model(u).Update("is_admin", true).Error)
	u.IsAdmin = true
	return u
}

func CreateTag(t *testing.T, db *gorm.DB, name, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// CreateRecipe inserts a recipe directly, bypassing the workflow service.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tags []*models.Tag, amounts map[*models.Ingredient]int) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Cook " + name,
		Image:       fmt.Sprintf("/media/recipes/%s.png", uuid.NewString()),
		CookingTime: 10,
	}
	require.NoError(t, db.Create(r).Error)

	for _, tag := range tags {
		require.NoError(t, db.Create(&models.RecipeTag{RecipeID: r.ID, TagID: tag.ID}).Error)
	}
	for ing, amount := range amounts {
		require.NoError(t, db.Create(&models.IngredientRecipe{RecipeID: r.ID, IngredientID: ing.ID, Amount: amount}).Error)
	}
	return r
}
