// Package telegram is the Telegram frontend: catalog listings with
// inline wishlist toggles.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// Deps holds what the bot reads and writes.
type Deps struct {
	Catalog  core.CatalogSource
	Wishlist *wishlist.Store
}

// messenger is the part of the Bot API the handlers use.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram frontend for cinegrid.
type Bot struct {
	client    *tgbotapi.BotAPI
	api       messenger
	sessions  *sessionManager
	deps      Deps
	newLoader LoaderFactory
	logger    *slog.Logger
}

// New creates a new Telegram Bot.
func New(token string, allowedUserIDs []int64, deps Deps, logger *slog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := newBot(client, allowedUserIDs, deps, logger)
	b.client = client
	return b, nil
}

func newBot(api messenger, allowedUserIDs []int64, deps Deps, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:      api,
		sessions: newSessionManager(allowedUserIDs),
		deps:     deps,
		newLoader: func() *accumulator.Loader {
			return accumulator.NewLoader(deps.Catalog, core.FetchQuery{}, logger)
		},
		logger: logger,
	}
}

// Start starts the long-polling loop. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("telegram bot started",
		slog.String("username", b.client.Self.UserName),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.client.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches an incoming Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}
