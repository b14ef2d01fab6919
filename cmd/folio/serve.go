// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/spf13/cobra"

	"github.com/tomtom215/folio/internal/api"
	"github.com/tomtom215/folio/internal/auth"
	"github.com/tomtom215/folio/internal/authz"
	"github.com/tomtom215/folio/internal/comments"
	"github.com/tomtom215/folio/internal/config"
	"github.com/tomtom215/folio/internal/database"
	"github.com/tomtom215/folio/internal/engagement"
	"github.com/tomtom215/folio/internal/favorites"
	"github.com/tomtom215/folio/internal/imagetier"
	"github.com/tomtom215/folio/internal/logging"
	"github.com/tomtom215/folio/internal/media"
	"github.com/tomtom215/folio/internal/recommend"
	"github.com/tomtom215/folio/internal/supervisor"
	"github.com/tomtom215/folio/internal/supervisor/services"
	ws "github.com/tomtom215/folio/internal/websocket"
)

const (
	favoritesCacheTTL = time.Minute
	janitorInterval   = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// ensureJWTSecret fills an empty secret with a random one in development.
// Tokens signed with it do not survive a restart.
func ensureJWTSecret(cfg *config.Config) error {
	if cfg.Security.JWTSecret != "" {
		return nil
	}
	if !cfg.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate jwt secret: %w", err)
	}
	cfg.Security.JWTSecret = hex.EncodeToString(buf)
	logging.Warn().Msg("JWT_SECRET not set; using an ephemeral secret, sessions end on restart")
	return nil
}

// dbCandidates feeds the recommender from the item table, newest first.
func dbCandidates(db *database.DB) recommend.CandidateSource {
	return recommend.CandidateFunc(func(ctx context.Context, kind media.Kind, limit int) ([]media.MediaItem, error) {
		return db.ListItems(ctx, database.ItemFilter{Kind: kind, Sort: database.SortNewest, Limit: limit})
	})
}

//nolint:gocyclo // sequential wiring of every component
func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("kv_backend", cfg.Engagement.KVBackend).
		Str("session_store", cfg.Security.SessionStore).
		Msg("Starting Folio")

	if err := ensureJWTSecret(cfg); err != nil {
		return err
	}
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS_ORIGINS=* allows any website to call the API with viewer credentials")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	db, err := database.New(&cfg.Database, cfg.Media.FileBaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Engagement: liked flags and pending ops in the KV store, increments
	// flowing over the in-process bus to the backend syncer.
	kv, err := engagement.NewKVStore(&cfg.Engagement)
	if err != nil {
		return fmt.Errorf("open engagement store: %w", err)
	}
	defer func() { _ = kv.Close() }()

	wmLogger := engagement.NewWatermillLogger(logging.WithComponent("watermill"))
	bus := engagement.NewBus(wmLogger)
	defer func() { _ = bus.Close() }()

	storeCfg := engagement.DefaultStoreConfig()
	storeCfg.ShareCooldown = cfg.Engagement.ShareCooldown
	store := engagement.NewStore(kv, bus, storeCfg, logger)

	hub := ws.NewHub()

	syncCfg := engagement.DefaultSyncerConfig()
	syncCfg.Breaker.FailureThreshold = cfg.Engagement.BreakerFailures
	if cfg.Engagement.BreakerTimeout > 0 {
		syncCfg.Breaker.Timeout = cfg.Engagement.BreakerTimeout
	}
	syncer := engagement.NewSyncer(store, db, hub, syncCfg, logger)
	retry := engagement.NewRetryLoop(store, bus, engagement.RetryConfig{
		Interval:  cfg.Engagement.RetryInterval,
		PerSecond: cfg.Engagement.RetryPerSecond,
		Burst:     cfg.Engagement.RetryBurst,
	}, logger)
	syncRouter := services.NewMessageRouterService("engagement-sync", func() (*message.Router, error) {
		return engagement.NewRouter(bus, syncer, wmLogger)
	})

	// Authentication and authorization.
	sessions, err := auth.NewSessionStore(&cfg.Security)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() { _ = sessions.Close() }()
	lockout := auth.NewLockoutManager(auth.LockoutConfigFrom(&cfg.Security))
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(db, jwtManager, sessions, lockout, cfg.Security.SessionTimeout, logger)
	if err != nil {
		return err
	}
	if err := authSvc.EnsureAdmin(ctx, &cfg.Security); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.PolicyPath = cfg.Security.PolicyPath
	enforcer, err := authz.NewEnforcer(enforcerCfg)
	if err != nil {
		return fmt.Errorf("authorization policy: %w", err)
	}
	defer enforcer.Close()

	favs := favorites.NewRegistry(db, favoritesCacheTTL, logger)
	defer favs.Close()

	engine, err := recommend.NewEngine(recommend.FromAppConfig(&cfg.Recommend), logger)
	if err != nil {
		return fmt.Errorf("recommendation engine: %w", err)
	}
	engine.SetCandidateSource(dbCandidates(db))

	handler, err := api.NewHandler(api.Deps{
		Config:      cfg,
		Items:       db,
		Engagement:  store,
		Syncer:      syncer,
		Recommender: engine,
		Favorites:   favs,
		Comments:    comments.NewService(db, enforcer, logger),
		Auth:        authSvc,
		AuthMW:      auth.NewMiddleware(authSvc, auth.DefaultCookieConfig(cfg.Security.CookieSecure)),
		Enforcer:    enforcer,
		Images:      imagetier.NewService(&cfg.Media, nil),
		Hub:         hub,
	})
	if err != nil {
		return err
	}
	defer handler.Close()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           api.NewRouter(handler).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewGalleryTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, supervisor.Components{
		RetryLoop:  retry,
		Janitor:    auth.NewSessionJanitor(sessions, lockout, janitorInterval),
		Hub:        hub,
		SyncRouter: syncRouter,
		API:        services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout),
	})
	if err != nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	logger.Info().Str("addr", srv.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Folio stopped")
	return nil
}
