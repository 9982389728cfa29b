package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

const loaderBatchSize = 500

// Loader imports reference data from headerless CSV files. Rows that already
// exist are skipped.
type Loader struct {
	db *gorm.DB
}

func NewLoader(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// LoadTags reads name,color,slug rows and returns how many tags were inserted.
func (l *Loader) LoadTags(ctx context.Context, r io.Reader) (int64, error) {
	var tags []models.Tag
	err := readRows(r, 3, func(row []string) {
		tags = append(tags, models.Tag{Name: row[0], Color: row[1], Slug: row[2]})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read tags: %w", err)
	}
	return insertIgnoringDuplicates(ctx, l.db, "tags", tags)
}

// LoadIngredients reads name,measurement_unit rows and returns how many
// ingredients were inserted.
func (l *Loader) LoadIngredients(ctx context.Context, r io.Reader) (int64, error) {
	var ingredients []models.Ingredient
	err := readRows(r, 2, func(row []string) {
		ingredients = append(ingredients, models.Ingredient{Name: row[0], MeasurementUnit: row[1]})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read ingredients: %w", err)
	}
	return insertIgnoringDuplicates(ctx, l.db, "ingredients", ingredients)
}

// readRows calls add for every row with a non-empty first column. A leading
// "name" header row is tolerated.
func readRows(r io.Reader, columns int, add func([]string)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if row[0] == "" || (line == 1 && strings.EqualFold(row[0], "name")) {
			continue
		}
		add(row)
	}
}

func insertIgnoringDuplicates[T any](ctx context.Context, db *gorm.DB, table string, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, loaderBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", table, res.Error)
	}
	log.Info().Str("component", "loader").Str("table", table).Int("read", len(rows)).Int64("inserted", res.RowsAffected).Msg("reference data loaded")
	return res.RowsAffected, nil
}
