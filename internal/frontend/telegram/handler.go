package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
	"github.com/vadimtrunov/cinegrid/internal/catalog"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "An error occurred while processing your request. Please try again."
	resetMsg        = "Listing cleared. Start a new one with /popular, /nowplaying, /genre or /search."
	noListingMsg    = "Nothing to continue. Start with /popular, /nowplaying, /genre or /search."
	busyMsg         = "Still loading the previous page, hold on."
	noMoreMsg       = "No more results."
	noResultsMsg    = "No results."
	helpMsg         = `cinegrid commands:
/popular - popular movies
/nowplaying - movies in theaters
/genre <id or name> - popular movies of a genre
/search <text> - search by title (plain text works too)
/more - next page of the current listing
/details <id> - one movie in detail
/wishlist [filter] [sort] - your saved movies
/reset - forget the current listing
Tap a movie button to add it to or remove it from your wishlist.`

	wishlistCallbackPrefix = "wl:"

	maxButtonLabel     = 30 // max characters in inline keyboard button label
	maxWishlistEntries = 50
)

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !strings.HasPrefix(text, "/") {
		b.startListing(ctx, chatID, core.FetchQuery{Endpoint: core.EndpointSearch, Text: text})
		return
	}

	cmd, args := parseCommand(text)
	switch cmd {
	case "start", "help":
		b.sendText(chatID, helpMsg)
	case "popular":
		b.startListing(ctx, chatID, core.FetchQuery{Endpoint: core.EndpointPopular})
	case "nowplaying", "now_playing":
		b.startListing(ctx, chatID, core.FetchQuery{Endpoint: core.EndpointNowPlaying})
	case "genre":
		g, ok := catalog.LookupGenre(args)
		if !ok {
			b.sendText(chatID, "Usage: /genre <id or name>. Known genres: "+knownGenreNames())
			return
		}
		b.startListing(ctx, chatID, core.FetchQuery{Endpoint: core.EndpointDiscover, GenreID: g.ID})
	case "search":
		if args == "" {
			b.sendText(chatID, "Usage: /search <text>")
			return
		}
		b.startListing(ctx, chatID, core.FetchQuery{Endpoint: core.EndpointSearch, Text: args})
	case "more":
		l, ok := b.sessions.get(chatID)
		if !ok {
			b.sendText(chatID, noListingMsg)
			return
		}
		b.loadMore(ctx, chatID, l)
	case "details":
		b.sendDetails(ctx, chatID, args)
	case "wishlist":
		b.sendWishlist(chatID, args)
	case "reset":
		b.sessions.reset(chatID)
		b.sendText(chatID, resetMsg)
	default:
		b.sendText(chatID, "Unknown command. Send /help for the list.")
	}
}

// parseCommand splits "/cmd@bot args" into "cmd" and "args".
func parseCommand(text string) (cmd, args string) {
	head, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

func knownGenreNames() string {
	names := make([]string, len(catalog.KnownGenres))
	for i, g := range catalog.KnownGenres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// listingTitle names the listing a query produces.
func listingTitle(q core.FetchQuery) string {
	switch q.Endpoint {
	case core.EndpointNowPlaying:
		return "Now playing"
	case core.EndpointDiscover:
		if g, ok := catalog.LookupGenre(strconv.Itoa(q.GenreID)); ok && g.Name != "" {
			return g.Name
		}
		return fmt.Sprintf("Genre %d", q.GenreID)
	case core.EndpointSearch:
		return "Search: " + q.Text
	default:
		return "Popular"
	}
}

// startListing points the chat's loader at q and sends the first page.
func (b *Bot) startListing(ctx context.Context, chatID int64, q core.FetchQuery) {
	l := b.sessions.getOrCreate(chatID, b.newLoader)
	l.Restart(q)
	b.loadMore(ctx, chatID, l)
}

// loadMore fetches the next page of the chat's listing and sends the new items.
func (b *Bot) loadMore(ctx context.Context, chatID int64, l *accumulator.Loader) {
	before := len(l.Snapshot().Items)
	set, err := l.LoadNext(ctx)
	switch {
	case errors.Is(err, accumulator.ErrBusy):
		b.sendText(chatID, busyMsg)
		return
	case errors.Is(err, accumulator.ErrStale):
		return
	case errors.Is(err, accumulator.ErrExhausted):
		b.sendText(chatID, noMoreMsg)
		return
	case err != nil:
		b.logger.Error("load page failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, userMessage(err))
		return
	}

	if before > len(set.Items) {
		before = 0
	}
	fresh := set.Items[before:]
	if len(fresh) == 0 {
		switch {
		case set.Exhausted && before == 0:
			b.sendText(chatID, noResultsMsg)
		case set.Exhausted:
			b.sendText(chatID, noMoreMsg)
		default:
			b.sendText(chatID, fmt.Sprintf("Nothing on page %d matched. Send /more to keep looking.", set.NextPage-1))
		}
		return
	}

	title := fmt.Sprintf("%s · page %d", listingTitle(l.Query()), set.NextPage-1)
	b.sendMarkdown(chatID, formatListing(title, before+1, fresh), b.wishlistKeyboard(fresh))
}

// userMessage turns a catalog failure into a chat reply.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrAuth):
		return "The catalog rejected the API key. Check the bot configuration."
	case errors.Is(err, core.ErrNetwork):
		return "Could not reach the catalog. Please try again later."
	case errors.Is(err, catalog.ErrInvalidQuery):
		return err.Error()
	}
	return errorMsg
}

func (b *Bot) sendDetails(ctx context.Context, chatID int64, args string) {
	id, err := strconv.Atoi(args)
	if err != nil || id <= 0 {
		b.sendText(chatID, "Usage: /details <movie id>")
		return
	}

	d, err := b.deps.Catalog.Details(ctx, id)
	if err != nil {
		b.logger.Error("details failed", slog.Int("id", id), slog.String("error", err.Error()))
		b.sendText(chatID, userMessage(err))
		return
	}

	b.sendPoster(chatID, d.PosterPath, d.Title)
	b.sendMarkdown(chatID, formatDetails(d), b.wishlistKeyboard([]core.CatalogItem{d.Item()}))
}

func (b *Bot) sendWishlist(chatID int64, args string) {
	if b.deps.Wishlist == nil {
		b.sendText(chatID, "The wishlist is not available.")
		return
	}

	opts := wishlist.Options{Filter: wishlist.FilterAll, Sort: wishlist.SortDateDesc}
	for _, arg := range strings.Fields(args) {
		if f, err := wishlist.ParseFilter(arg); err == nil {
			opts.Filter = f
			continue
		}
		if s, err := wishlist.ParseSort(arg); err == nil {
			opts.Sort = s
			continue
		}
		b.sendText(chatID, fmt.Sprintf("Unknown option %q. Filters: all, high-rated, recent. Sorts: date-desc, date-asc, title-asc, title-desc, rating-desc, rating-asc.", arg))
		return
	}

	items := wishlist.Apply(b.deps.Wishlist.List(), opts)
	if len(items) == 0 {
		if b.deps.Wishlist.Len() == 0 {
			b.sendText(chatID, "Your wishlist is empty.")
		} else {
			b.sendText(chatID, "No wishlist entries match.")
		}
		return
	}

	title := fmt.Sprintf("Wishlist · %s · %s", opts.Filter, opts.Sort)
	if len(items) > maxWishlistEntries {
		title += fmt.Sprintf(" · first %d of %d", maxWishlistEntries, len(items))
		items = items[:maxWishlistEntries]
	}
	b.sendMarkdown(chatID, formatListing(title, 1, items), b.wishlistKeyboard(items))
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	if !b.sessions.isAllowed(userID) {
		b.answer(cq.ID, unauthorizedMsg)
		return
	}

	idText, ok := strings.CutPrefix(cq.Data, wishlistCallbackPrefix)
	id, err := strconv.Atoi(idText)
	if !ok || err != nil || b.deps.Wishlist == nil || cq.Message == nil {
		b.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID

	var resolveErr error
	_, added, err := b.deps.Wishlist.ToggleFunc(id, func() (core.CatalogItem, error) {
		item, err := b.resolveItem(ctx, chatID, id)
		resolveErr = err
		return item, err
	})
	switch {
	case resolveErr != nil:
		b.logger.Error("resolve wishlist item failed", slog.Int("id", id), slog.String("error", resolveErr.Error()))
		b.answer(cq.ID, userMessage(resolveErr))
		return
	case err != nil:
		b.logger.Error("wishlist toggle failed", slog.Int("id", id), slog.String("error", err.Error()))
		b.answer(cq.ID, "Could not update the wishlist.")
		return
	}

	if added {
		b.answer(cq.ID, "Added to wishlist")
	} else {
		b.answer(cq.ID, "Removed from wishlist")
	}

	if cq.Message.ReplyMarkup != nil {
		kb := relabel(*cq.Message.ReplyMarkup, cq.Data, added)
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, cq.Message.MessageID, kb)
		if _, err := b.api.Request(edit); err != nil {
			b.logger.Debug("failed to update keyboard", slog.String("error", err.Error()))
		}
	}
}

// resolveItem finds the full item for id in the chat's listing or the catalog.
func (b *Bot) resolveItem(ctx context.Context, chatID int64, id int) (core.CatalogItem, error) {
	if l, ok := b.sessions.get(chatID); ok {
		for _, it := range l.Snapshot().Items {
			if it.ID == id {
				return it, nil
			}
		}
	}
	if b.deps.Catalog == nil {
		return core.CatalogItem{}, fmt.Errorf("movie %d: %w", id, core.ErrNotFound)
	}
	d, err := b.deps.Catalog.Details(ctx, id)
	if err != nil {
		return core.CatalogItem{}, err
	}
	return d.Item(), nil
}

// wishlistKeyboard builds one toggle button per item. Returns nil for no items.
func (b *Bot) wishlistKeyboard(items []core.CatalogItem) *tgbotapi.InlineKeyboardMarkup {
	if len(items) == 0 || b.deps.Wishlist == nil {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for _, it := range items {
		btn := tgbotapi.NewInlineKeyboardButtonData(
			buttonLabel(it.Title, b.deps.Wishlist.Contains(it.ID)),
			wishlistCallbackPrefix+strconv.Itoa(it.ID),
		)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func buttonLabel(title string, saved bool) string {
	if r := []rune(title); len(r) > maxButtonLabel {
		title = string(r[:maxButtonLabel]) + "…"
	}
	if saved {
		return "★ " + title
	}
	return "☆ " + title
}

// relabel flips the star on the button carrying data.
func relabel(kb tgbotapi.InlineKeyboardMarkup, data string, saved bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, len(kb.InlineKeyboard))
	for i, row := range kb.InlineKeyboard {
		rows[i] = make([]tgbotapi.InlineKeyboardButton, len(row))
		copy(rows[i], row)
		for j, btn := range rows[i] {
			if btn.CallbackData == nil || *btn.CallbackData != data {
				continue
			}
			title := strings.TrimPrefix(strings.TrimPrefix(btn.Text, "★ "), "☆ ")
			if saved {
				rows[i][j].Text = "★ " + title
			} else {
				rows[i][j].Text = "☆ " + title
			}
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// answer acknowledges a callback query, optionally with a toast.
func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Debug("failed to answer callback", slog.String("error", err.Error()))
	}
}

// sendMarkdown sends MarkdownV2 text with an optional inline keyboard.
func (b *Bot) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendPoster sends a movie poster photo with a caption. Best effort.
func (b *Bot) sendPoster(chatID int64, posterPath, caption string) {
	url := catalog.PosterURL(posterPath, "w500")
	if url == "" {
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Debug("failed to send poster",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}
