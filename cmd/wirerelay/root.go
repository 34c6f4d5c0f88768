package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirerelay/internal/app"
	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "wirerelay",
		Short:         "Real-time chat relay over WebSocket",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	serve := newServeCmd(opts)
	root.AddCommand(serve, newMigrateCmd(opts))
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// loadConfig resolves configuration and builds the logger it asks for.
// Flags win over file and environment.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, *zerolog.Logger, error) {
	bootstrap := log.New(firstNonEmpty(opts.logLevel, "info"), firstNonEmpty(opts.logFormat, "console"))

	cfg, path, err := config.Load(bootstrap, opts.configPath)
	if err != nil {
		bootstrap.Error().Err(err).Msg("failed to load config")
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	applyServeFlags(cmd, &cfg)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				logger.Error().Err(err).Msg("failed to initialize application")
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting wirerelay server")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "HTTP listen address")
	cmd.Flags().String("db", "", "SQLite database path")
	cmd.Flags().Duration("shutdown-timeout", 0, "graceful shutdown timeout")
	return cmd
}

// applyServeFlags copies explicitly set serve flags over the loaded config.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("addr") == nil {
		return
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("db") {
		cfg.DatabasePath, _ = flags.GetString("db")
	}
	if flags.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout, _ = flags.GetDuration("shutdown-timeout")
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and seed channels, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				logger.Error().Err(err).Msg("migration failed")
				return err
			}
			defer st.Close()

			logger.Info().Str("db_path", cfg.DatabasePath).Msg("database migrated")
			return nil
		},
	}
}
