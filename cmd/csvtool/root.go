package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvtool/internal/application"
	"github.com/JonMunkholm/csvtool/internal/config"
	"github.com/JonMunkholm/csvtool/internal/history"
	"github.com/JonMunkholm/csvtool/internal/logging"
)

// errReported marks a failure whose message was already written to stderr.
var errReported = errors.New("reported")

// app is the state shared by every subcommand, built once the command line
// has been parsed.
type app struct {
	cfg        *config.Config
	service    *application.Service
	closeStore func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "csvtool",
		Short:         "Profile and transform messy data files",
		Long:          `csvtool profiles and cleans CSV and Excel exports of client matter data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	root.AddCommand(
		newProfileCmd(a),
		newTransformCmd(a),
		newServeCmd(a),
		newRunsCmd(a),
	)

	return root
}

// init loads .env and configuration, sets up logging and opens run history.
func (a *app) init(cmd *cobra.Command) error {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	store, closeStore, err := openStore(cmd.Context(), &cfg.Database)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.closeStore = closeStore
	a.service = application.NewService(cfg, store)
	return nil
}

// close releases the history store. Safe to call when init never ran.
func (a *app) close() {
	if a.closeStore != nil {
		a.closeStore()
		a.closeStore = nil
	}
}

// openStore connects to PostgreSQL when DATABASE_URL is set and keeps run
// history in memory otherwise.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (history.Store, func(), error) {
	if !cfg.HistoryEnabled() {
		return history.NewMemoryStore(history.DefaultListLimit), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse database URL: %w", err)
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	store := history.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Debug("run history in database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return store, pool.Close, nil
}
