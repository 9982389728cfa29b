// Command loaddata imports tags and ingredients from CSV files. Rows that
// already exist are skipped, so the command can be re-run safely.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	tags := flag.String("tags", "", "CSV file with name,color,slug rows")
	ingredients := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	flag.Parse()

	if *tags == "" && *ingredients == "" {
		fmt.Fprintln(os.Stderr, "usage: loaddata [-tags file.csv] [-ingredients file.csv]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Env.String(), cfg.LogLevel)

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	loader := service.NewLoader(db)
	ctx := context.Background()

	if *tags != "" {
		n, err := loadFile(*tags, func(r io.Reader) (int64, error) { return loader.LoadTags(ctx, r) })
		if err != nil {
			log.Fatal().Err(err).Str("file", *tags).Msg("failed to load tags")
		}
		log.Info().Int64("inserted", n).Msg("tags loaded")
	}
	if *ingredients != "" {
		n, err := loadFile(*ingredients, func(r io.Reader) (int64, error) { return loader.LoadIngredients(ctx, r) })
		if err != nil {
			log.Fatal().Err(err).Str("file", *ingredients).Msg("failed to load ingredients")
		}
		log.Info().Int64("inserted", n).Msg("ingredients loaded")
	}
}

func loadFile(path string, load func(io.Reader) (int64, error)) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return load(f)
}
