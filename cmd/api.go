package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/config"
	"github.com/Shivanand-hulikatti/eventdesk/internal/database"
	"github.com/Shivanand-hulikatti/eventdesk/internal/handler"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/repository"
	"github.com/Shivanand-hulikatti/eventdesk/internal/service"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the events API",
	Long: `Run the events API server on PORT.

The schema is applied on startup unless --skip-migrate is given.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().Bool("skip-migrate", false, "Do not apply the schema on startup")
}

func runAPI(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")

	authn, err := auth.New(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	ctx := cmd.Context()
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !skipMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	svc := service.NewEventService(
		repository.NewEventRepository(pool),
		repository.NewParticipantRepository(pool),
		repository.NewUserRepository(pool),
	)
	router := handler.NewAPIRouter(handler.NewEventHandler(svc), authn)
	return serve("api", cfg.API.Port, router)
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg.Database.DSN(), log.WithComponent("database"))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return pool, nil
}
