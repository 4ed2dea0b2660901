package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/config"
	"github.com/Shivanand-hulikatti/eventdesk/internal/desk"
	"github.com/Shivanand-hulikatti/eventdesk/internal/gateway"
	"github.com/Shivanand-hulikatti/eventdesk/internal/handler"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
)

var deskCmd = &cobra.Command{
	Use:   "desk",
	Short: "Run the desk backend",
	Long: `Run the desk server on DESK_PORT. It calls the events API at GATEWAY_URL
and keeps sessions in memory or, with SESSION_STORE=redis, in Redis at
REDIS_URL.`,
	RunE: runDesk,
}

func runDesk(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	authn, err := auth.New(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	store, closeStore, err := sessionStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	base := gateway.New(cfg.Desk.GatewayURL, cfg.Desk.GatewayTimeout)
	d := desk.New(store, func(token string) desk.Gateway {
		return base.WithToken(token)
	}, authn)

	logger := log.WithComponent("desk")
	logger.Info().
		Str("gateway", cfg.Desk.GatewayURL).
		Str("store", cfg.Desk.SessionStore).
		Dur("session_ttl", cfg.Desk.SessionTTL).
		Msg("desk configured")
	return serve("desk", cfg.Desk.Port, handler.NewDeskRouter(handler.NewDeskHandler(d)))
}

// sweep periodically evicts expired in-memory sessions. Redis expires keys
// on its own.
func sweep(store *session.MemoryStore, ttl time.Duration, stop <-chan struct{}) {
	if ttl <= 0 {
		return
	}
	interval := max(min(ttl/4, time.Minute), time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := log.WithComponent("session")
	for {
		select {
		case <-ticker.C:
			logger.Debug().Int("live", store.Sweep()).Msg("expired sessions swept")
		case <-stop:
			return
		}
	}
}

func sessionStore(ctx context.Context, cfg *config.Config) (desk.Store, func(), error) {
	switch cfg.Desk.SessionStore {
	case "", "memory":
		store := session.NewMemoryStore(cfg.Desk.SessionTTL)
		stop := make(chan struct{})
		go sweep(store, cfg.Desk.SessionTTL, stop)
		return store, func() { close(stop) }, nil
	case "redis":
		rdb, err := session.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Logger.Warn().Err(err).Msg("close redis client")
			}
		}
		return session.NewRedisStore(rdb, cfg.Desk.SessionTTL), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Desk.SessionStore)
	}
}
