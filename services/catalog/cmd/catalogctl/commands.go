package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/auth"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/event"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository/postgres"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/migrations"
)

const commandTimeout = 2 * time.Minute

// env is what every command needs: config, a logger and an open pool with
// the schema applied.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func boot(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New("catalogctl", cfg.LogLevel)

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &env{cfg: cfg, logger: log, pool: pool}, nil
}

// catalogctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending catalog migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.pool.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

// catalogctl seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo categories and products",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		e, err := boot(ctx)
		if err != nil {
			return err
		}
		defer e.pool.Close()

		categories := postgres.NewCategoryRepository(e.pool)
		products := postgres.NewProductRepository(e.pool)
		admin := service.NewAdminService(categories, products, event.NewProducer(pkgkafka.NopPublisher{}, e.logger), e.logger)
		seed := service.NewSeedService(categories, products, admin, e.cfg.SeedSecret, e.logger)

		result, err := seed.Seed(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// catalogctl create-admin --email --password [--name]
func newCreateAdminCmd() *cobra.Command {
	var input domain.CreateUserInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account for the catalog API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Password == "" {
				input.Password = os.Getenv("ADMIN_PASSWORD")
			}
			if err := validator.Validate(&input); err != nil {
				if path, msg, ok := firstFieldError(err); ok {
					return fmt.Errorf("%s %s", path, msg)
				}
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			e, err := boot(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			users := service.NewUserService(
				postgres.NewUserRepository(e.pool),
				auth.NewHasher(e.cfg.BcryptCost),
				auth.NewJWTManager(e.cfg.JWTSecret, e.cfg.JWTExpiry),
				e.logger,
			)
			user, err := users.CreateAdmin(ctx, &input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %d\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "password, 8-72 characters; defaults to $ADMIN_PASSWORD")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func firstFieldError(err error) (path, msg string, ok bool) {
	var valErr *validator.ValidationError
	if !errors.As(err, &valErr) {
		return "", "", false
	}
	path, msg = valErr.First()
	return path, msg, true
}
