package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinegrid/internal/frontend/telegram"
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long: "Serve catalog listings and wishlist toggles over Telegram.\n" +
			"Logs go to cinegrid.log in the data directory.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

// runBot initializes services and runs the bot until interrupted.
func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or CINEGRID_TELEGRAM_BOT_TOKEN env var",
		)
	}

	logger, closeLog := setupLogging(cfg, true)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := initServices(cfg, logger)
	cat, err := svc.requireCatalog(ctx)
	if err != nil {
		return err
	}

	bot, err := telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.AllowedUserIDs,
		telegram.Deps{Catalog: cat, Wishlist: svc.wishlist},
		logger,
	)
	if err != nil {
		return err
	}

	logger.Info("telegram bot starting",
		slog.Int("allowed_users", len(cfg.Telegram.AllowedUserIDs)),
	)
	return bot.Start(ctx)
}
