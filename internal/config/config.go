package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vadimtrunov/cinegrid/internal/layout"
)

// Config represents the main application configuration
type Config struct {
	// Catalog API
	TMDb TMDbConfig `yaml:"tmdb"`

	// Grid geometry, in terminal cells
	Layout LayoutConfig `yaml:"layout"`

	// Search view behaviour
	Search SearchConfig `yaml:"search"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	// APIKey is used when nobody is signed in.
	APIKey      string        `yaml:"api_key,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	Language    string        `yaml:"language,omitempty"`
	CacheTTL    time.Duration `yaml:"cache_ttl,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
}

// LayoutConfig holds the grid planner settings
type LayoutConfig struct {
	Breakpoint int           `yaml:"breakpoint,omitempty"`
	Narrow     ProfileConfig `yaml:"narrow"`
	Wide       ProfileConfig `yaml:"wide"`
}

// ProfileConfig is the footprint of one grid card
type ProfileConfig struct {
	ItemWidth  int `yaml:"item_width,omitempty"`
	ItemHeight int `yaml:"item_height,omitempty"`
	Gap        int `yaml:"gap,omitempty"`
}

// SearchConfig holds search view settings
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
	DataDir  string `yaml:"data_dir"`  // Directory for records and the log file
}

// Defaults applied by setDefaults.
const (
	DefaultBaseURL     = "https://api.themoviedb.org/3"
	DefaultLanguage    = "ko-KR"
	DefaultCacheTTL    = 15 * time.Minute
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 1
	DefaultDebounce    = 500 * time.Millisecond
	DefaultBreakpoint  = 100

	maxAttemptsLimit = 10
)

var (
	defaultNarrow = ProfileConfig{ItemWidth: 16, ItemHeight: 5, Gap: 1}
	defaultWide   = ProfileConfig{ItemWidth: 22, ItemHeight: 6, Gap: 2}
)

// Load loads configuration from a YAML file with environment variable overrides
func Load(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&cfg)
}

// Defaults returns the built-in configuration with environment overrides,
// for running without a config file.
func Defaults() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyEnvOverrides()
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validateConfigPath checks that path names a readable regular file.
func validateConfigPath(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path is a directory: %s", path)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("CINEGRID_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("CINEGRID_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("CINEGRID_TMDB_LANGUAGE"); v != "" {
		c.TMDb.Language = v
	}

	// Telegram
	if v := os.Getenv("CINEGRID_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("CINEGRID_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("CINEGRID_DATA_DIR"); v != "" {
		c.App.DataDir = v
	}
}

// setDefaults fills zero values. Negative values are left for Validate.
func (c *Config) setDefaults() {
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultBaseURL
	}
	if c.TMDb.Language == "" {
		c.TMDb.Language = DefaultLanguage
	}
	if c.TMDb.CacheTTL == 0 {
		c.TMDb.CacheTTL = DefaultCacheTTL
	}
	if c.TMDb.Timeout == 0 {
		c.TMDb.Timeout = DefaultTimeout
	}
	if c.TMDb.MaxAttempts == 0 {
		c.TMDb.MaxAttempts = DefaultMaxAttempts
	}

	if c.Layout.Breakpoint == 0 {
		c.Layout.Breakpoint = DefaultBreakpoint
	}
	if c.Layout.Narrow == (ProfileConfig{}) {
		c.Layout.Narrow = defaultNarrow
	}
	if c.Layout.Wide == (ProfileConfig{}) {
		c.Layout.Wide = defaultWide
	}

	if c.Search.Debounce == 0 {
		c.Search.Debounce = DefaultDebounce
	}

	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.DataDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.App.DataDir = filepath.Join(homeDir, ".cinegrid")
		} else {
			c.App.DataDir = ".cinegrid"
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}
	if strings.TrimSpace(c.TMDb.Language) == "" {
		return fmt.Errorf("tmdb.language is required")
	}
	if c.TMDb.CacheTTL < 0 {
		return fmt.Errorf("tmdb.cache_ttl must not be negative")
	}
	if c.TMDb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}
	if c.TMDb.MaxAttempts < 1 || c.TMDb.MaxAttempts > maxAttemptsLimit {
		return fmt.Errorf("tmdb.max_attempts must be between 1 and %d", maxAttemptsLimit)
	}

	if c.Layout.Breakpoint < 0 {
		return fmt.Errorf("layout.breakpoint must not be negative")
	}
	if err := validateProfile(c.Layout.Narrow, "layout.narrow"); err != nil {
		return err
	}
	if err := validateProfile(c.Layout.Wide, "layout.wide"); err != nil {
		return err
	}

	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	switch strings.ToLower(c.App.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error; got %q", c.App.LogLevel)
	}

	return nil
}

func validateProfile(p ProfileConfig, field string) error {
	if p.ItemWidth <= 0 {
		return fmt.Errorf("%s.item_width must be positive", field)
	}
	if p.ItemHeight <= 0 {
		return fmt.Errorf("%s.item_height must be positive", field)
	}
	if p.Gap < 0 {
		return fmt.Errorf("%s.gap must not be negative", field)
	}
	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must use http or https: %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host: %q", field, raw)
	}
	return nil
}

// Planner converts the layout settings into a grid planner.
func (l LayoutConfig) Planner() layout.Planner {
	return layout.Planner{
		Breakpoint: l.Breakpoint,
		Narrow:     layout.Profile(l.Narrow),
		Wide:       layout.Profile(l.Wide),
	}
}
