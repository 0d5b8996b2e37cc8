package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/cinegrid/internal/catalog"
	"github.com/vadimtrunov/cinegrid/internal/config"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/httpclient"
	"github.com/vadimtrunov/cinegrid/internal/session"
	"github.com/vadimtrunov/cinegrid/internal/storage"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleStar    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true) // white bold

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file. A missing file at
// the default path means built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg, err := config.Defaults()
			if err != nil {
				return nil, fmt.Errorf("load configuration: %w", err)
			}
			return cfg, nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging returns the command logger. Interactive modes log to the
// rotating file in the data dir, everything else to stderr.
func setupLogging(cfg *config.Config, interactive bool) (*slog.Logger, func()) {
	if !interactive {
		return config.SetupLogger(cfg.App.LogLevel, os.Stderr), func() {}
	}
	w := config.LogFile(cfg.App.DataDir)
	return config.SetupLogger(cfg.App.LogLevel, w), func() { _ = w.Close() }
}

// services is the process-wide state shared by every frontend.
type services struct {
	cfg      *config.Config
	records  *storage.Store
	wishlist *wishlist.Store
	identity *session.Local
	catalog  *catalog.Client
	logger   *slog.Logger
}

// initServices opens the record store and builds the shared components.
// The catalog client has no key until requireCatalog binds one.
func initServices(cfg *config.Config, logger *slog.Logger) *services {
	records := storage.NewOS(cfg.App.DataDir, logger)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Attempts = cfg.TMDb.MaxAttempts
	httpCfg.Timeout = cfg.TMDb.Timeout

	cat := catalog.New(catalog.Config{
		BaseURL:  cfg.TMDb.BaseURL,
		Language: cfg.TMDb.Language,
		CacheTTL: cfg.TMDb.CacheTTL,
		HTTP:     httpCfg,
	}, logger)
	logger.Debug("catalog client initialized",
		slog.String("url", sanitizeURL(cfg.TMDb.BaseURL)),
		slog.String("language", cfg.TMDb.Language),
	)

	return &services{
		cfg:      cfg,
		records:  records,
		wishlist: wishlist.Open(records, logger),
		identity: session.NewLocal(records, logger),
		catalog:  cat,
		logger:   logger,
	}
}

// requireCatalog returns the catalog bound to the signed-in user's key, or
// the configured key when nobody is signed in.
func (s *services) requireCatalog(ctx context.Context) (*catalog.Client, error) {
	key, sess, err := session.ResolveAPIKey(ctx, s.identity, s.cfg.TMDb.APIKey)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		s.logger.Debug("using session key", slog.String("session_id", sess.ID))
	}
	return s.catalog.WithAPIKey(key), nil
}

// prepare loads the config and builds services for a one-shot command.
func prepare() (*services, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, _ := setupLogging(cfg, false)
	return initServices(cfg, logger), nil
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// formatStars renders a 0-10 vote average as a five-star meter.
func formatStars(vote float64) string {
	filled := min(max(int(vote/2+0.5), 0), 5)
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled) + fmt.Sprintf(" %.1f", vote)
}

// printItems writes a numbered listing starting at first.
func printItems(w io.Writer, items []core.CatalogItem, first int, saved func(id int) bool) {
	for i, it := range items {
		year := "    "
		if y := it.Year(); y > 0 {
			year = fmt.Sprintf("%4d", y)
		}
		mark := " "
		if saved != nil && saved(it.ID) {
			mark = styleStar.Render("♥")
		}
		fmt.Fprintf(w, "%3d. %s %s %s %s %s\n",
			first+i,
			mark,
			styleTitle.Render(it.Title),
			styleDim.Render(year),
			styleStar.Render(formatStars(it.VoteAverage)),
			styleDim.Render(fmt.Sprintf("#%d", it.ID)),
		)
	}
}

// describeError turns catalog failures into a one-line hint.
func describeError(err error) error {
	var apiErr *core.APIError
	switch {
	case errors.Is(err, core.ErrAuth) && errors.As(err, &apiErr):
		return fmt.Errorf("the catalog rejected the API key (%s)", apiErr.Message)
	case errors.Is(err, core.ErrNetwork):
		return fmt.Errorf("could not reach the catalog: %w", err)
	}
	return err
}
