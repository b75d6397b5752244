// Package main is the entry point for the casino core daemon.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"casino-core/internal/config"
	"casino-core/internal/game"
	"casino-core/internal/game/blackjack"
	"casino-core/internal/game/mines"
	"casino-core/internal/game/tictactoe"
	"casino-core/internal/pkg/db"
	"casino-core/internal/pkg/rng"
	"casino-core/internal/repository"
	"casino-core/internal/service"
	"casino-core/internal/session"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)

	// Single secure randomness source for every draw in the process
	src := rng.NewCryptoSource()

	// Initialize game machines and registry
	blackjackGame := blackjack.New(cfg.House.FeePct)
	minesGame := mines.New(cfg.House.FeePct)
	tictactoeGame := tictactoe.New(cfg.Games.TicTacToe.WinReward, cfg.Games.TicTacToe.DrawReward)

	registry := game.NewRegistry()
	for _, m := range []game.Machine{blackjackGame, minesGame, tictactoeGame} {
		if err := registry.Register(m); err != nil {
			log.Fatal().Err(err).Str("kind", string(m.Kind())).Msg("Failed to register game")
		}
	}

	// Initialize session manager
	sessions := session.NewManager(registry, src, session.Options{
		Capacity:      cfg.Sessions.Capacity,
		TTL:           cfg.Sessions.TTL,
		SweepInterval: cfg.Sessions.SweepInterval,
	})
	defer sessions.Close()

	// Initialize services
	economyService := service.NewEconomyService(ledgerRepo, txRepo, cfg.Claims, src)
	casinoService := service.NewCasinoService(
		economyService,
		sessions,
		src,
		cfg.House,
		cfg.Games.Mines,
		blackjackGame,
		minesGame,
		tictactoeGame,
	)
	// Exercise the dispatch path once so a wiring fault fails at boot
	// instead of on the first player action.
	if _, err := casinoService.HandleAction(ctx, "boot-check", 0, "noop"); !errors.Is(err, session.ErrNotFound) {
		log.Fatal().Err(err).Msg("Dispatch wiring check failed")
	}

	log.Info().
		Int("game_count", registry.Count()).
		Interface("kinds", registry.Kinds()).
		Float64("house_fee_pct", cfg.House.FeePct).
		Msg("Casino core ready")

	// Periodic session stats and database health while running
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := dbPool.HealthCheck(ctx); err != nil {
					log.Error().Err(err).Msg("Database health check failed")
				}
				log.Debug().Int("live_sessions", sessions.Len()).Msg("Session stats")
			}
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	log.Info().Msg("Casino core stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create user_stats table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_stats (
			guild_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			coins BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
			daily_at TIMESTAMPTZ,
			weekly_at TIMESTAMPTZ,
			fish_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (guild_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_user_stats_guild_coins ON user_stats(guild_id, coins DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: user_stats table created")

	// Migration 2: Create transactions table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			guild_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			type VARCHAR(50) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_guild_user_time ON transactions(guild_id, user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_type_time ON transactions(type, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: transactions table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
