package main

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"rezeptapp/internal/config"
	"rezeptapp/internal/db"
	apperrors "rezeptapp/internal/errors"
	"rezeptapp/internal/logging"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
	"rezeptapp/internal/service"
)

var defaultCategories = []string{"Breakfast", "Soups", "Main Dishes", "Desserts", "Baking", model.DefaultCategory}

type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	var e env

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Prepare a Rezept App database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logging.New(cfg.LogLevel, cfg.LogFormat)
			e.db, err = db.Open(cfg.DBDriver, cfg.DatabaseDSN, logging.GormLogger(e.log))
			if err != nil {
				return err
			}
			e.log.Info("connected to database")
			return nil
		},
	}

	root.AddCommand(newMigrateCmd(&e), newCategoriesCmd(&e), newRecipesCmd(&e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				e.log.Warn("dropping all tables")
				return db.Reset(e.db)
			}
			if err := db.Migrate(e.db); err != nil {
				return err
			}
			e.log.Info("database migrations completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables before migrating")
	return cmd
}

func newCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories [names...]",
		Short: "Insert categories, skipping existing ones",
		Long: `Insert categories. Without arguments a default set is used.

Examples:
  seed categories
  seed categories Vegan "Street Food"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = defaultCategories
			}
			svc := service.NewCategoryService(repository.NewCategoryRepository(e.db))
			created, skipped, err := seedCategories(cmd.Context(), svc, names)
			if err != nil {
				return err
			}
			e.log.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("categories seeded")
			return nil
		},
	}
}

func newRecipesCmd(e *env) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Import recipes from a JSON array",
		Long: `Fetch a JSON array of recipes and add them to the catalog.

Each element needs a title. ingredients and instructions may be strings or
arrays of lines.

Examples:
  seed recipes --url https://example.com/recipes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			inputs, err := fetchRecipes(cmd.Context(), client, url)
			if err != nil {
				return err
			}
			e.log.WithField("count", len(inputs)).Info("fetched recipes")

			svc := service.NewRecipeService(repository.NewRecipeRepository(e.db))
			created, skipped := seedRecipes(cmd.Context(), svc, inputs, e.log)
			e.log.WithFields(logrus.Fields{"created": created, "skipped": skipped}).Info("recipes seeded")
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "URL of a JSON array of recipes")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func isConflict(err error) bool {
	return apperrors.KindOf(err) == apperrors.KindConflict
}
