package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinytelemetry/homeroom/internal/model"
	"github.com/tinytelemetry/homeroom/internal/notion"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	defaultRefreshTTL      = model.DefaultRefreshTTL
	defaultFetchTimeout    = model.DefaultFetchTimeout
	defaultRetryBackoff    = model.DefaultRetryBackoff
	defaultRetryBackoffMax = model.DefaultRetryBackoffMax
	defaultFPS             = model.DefaultFPS
	defaultFontSize        = model.DefaultFontSize
	defaultTimezone        = model.DefaultTimezone
	defaultAPIAddr         = model.DefaultAPIAddr
	defaultLogLevel        = model.DefaultLogLevel
	maxFPS                 = 240
)

// appConfig is internal runtime configuration.
type appConfig struct {
	NotionAPIKey       string `mapstructure:"notion-api-key"`
	NotionDataSourceID string `mapstructure:"notion-data-source-id"`
	NotionBaseURL      string `mapstructure:"notion-base-url"`

	TitleProperty    string `mapstructure:"title-property"`
	DueProperty      string `mapstructure:"due-property"`
	DoneProperty     string `mapstructure:"done-property"`
	CategoryProperty string `mapstructure:"category-property"`
	ArchivedProperty string `mapstructure:"archived-property"`
	HomeworkCategory string `mapstructure:"homework-category"`
	SuppliesCategory string `mapstructure:"supplies-category"`

	RefreshTTL      time.Duration `mapstructure:"refresh-ttl"`
	FetchTimeout    time.Duration `mapstructure:"fetch-timeout"`
	RetryBackoff    time.Duration `mapstructure:"retry-backoff"`
	RetryBackoffMax time.Duration `mapstructure:"retry-backoff-max"`
	BlockingRefresh bool          `mapstructure:"blocking-refresh"`

	FPS           int    `mapstructure:"fps"`
	Timezone      string `mapstructure:"timezone"`
	FontPath      string `mapstructure:"font-path"`
	FontSize      int    `mapstructure:"font-size"`
	TimetablePath string `mapstructure:"timetable-path"`
	StatusScreen  bool   `mapstructure:"status-screen"`

	APIEnabled bool   `mapstructure:"api-enabled"`
	APIAddr    string `mapstructure:"api-addr"`

	LogLevel string `mapstructure:"log-level"`
	LogPath  string `mapstructure:"log-path"`

	ConfigPath string         `mapstructure:"-"` // not from config file
	Location   *time.Location `mapstructure:"-"`
	Level      log.Level      `mapstructure:"-"`
}

// schema returns the data source property names and category values.
func (c appConfig) schema() notion.Schema {
	return notion.Schema{
		Title:    c.TitleProperty,
		Due:      c.DueProperty,
		Done:     c.DoneProperty,
		Category: c.CategoryProperty,
		Archived: c.ArchivedProperty,
	}
}

func (c appConfig) categories() model.Categories {
	return model.Categories{
		model.QueryHomework: c.HomeworkCategory,
		model.QuerySupplies: c.SuppliesCategory,
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	schema := notion.DefaultSchema()
	defaultCategories := model.DefaultCategories()

	v := viper.New()
	v.SetEnvPrefix("HOMEROOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// The credentials keep the variable names the data source setup
	// documents, alongside the prefixed forms.
	if err := v.BindEnv("notion-api-key", "HOMEROOM_NOTION_API_KEY", "NOTION_API_KEY"); err != nil {
		return cfg, err
	}
	if err := v.BindEnv("notion-data-source-id", "HOMEROOM_NOTION_DATA_SOURCE_ID", "NOTION_DATA_SOURCE_ID"); err != nil {
		return cfg, err
	}

	v.SetDefault("notion-base-url", notion.DefaultBaseURL)
	v.SetDefault("title-property", schema.Title)
	v.SetDefault("due-property", schema.Due)
	v.SetDefault("done-property", schema.Done)
	v.SetDefault("category-property", schema.Category)
	v.SetDefault("archived-property", schema.Archived)
	v.SetDefault("homework-category", defaultCategories[model.QueryHomework])
	v.SetDefault("supplies-category", defaultCategories[model.QuerySupplies])
	v.SetDefault("refresh-ttl", defaultRefreshTTL)
	v.SetDefault("fetch-timeout", defaultFetchTimeout)
	v.SetDefault("retry-backoff", defaultRetryBackoff)
	v.SetDefault("retry-backoff-max", defaultRetryBackoffMax)
	v.SetDefault("blocking-refresh", false)
	v.SetDefault("fps", defaultFPS)
	v.SetDefault("timezone", defaultTimezone)
	v.SetDefault("font-path", "")
	v.SetDefault("font-size", defaultFontSize)
	v.SetDefault("timetable-path", "")
	v.SetDefault("status-screen", true)
	v.SetDefault("api-enabled", false)
	v.SetDefault("api-addr", defaultAPIAddr)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-path", filepath.Join(home, ".local", "state", "homeroom", "homeroom.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "homeroom", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if strings.TrimSpace(cfg.NotionAPIKey) == "" {
		return cfg, errors.New("NOTION_API_KEY is not set")
	}
	if strings.TrimSpace(cfg.NotionDataSourceID) == "" {
		return cfg, errors.New("NOTION_DATA_SOURCE_ID is not set")
	}
	categories := cfg.categories()
	for _, q := range model.Queries() {
		if strings.TrimSpace(categories[q]) == "" {
			return cfg, fmt.Errorf("no category configured for %s", q)
		}
	}
	if cfg.FPS < 1 || cfg.FPS > maxFPS {
		return cfg, fmt.Errorf("invalid fps: %d (want 1-%d)", cfg.FPS, maxFPS)
	}
	if cfg.FontSize < 1 {
		return cfg, fmt.Errorf("invalid font-size: %d", cfg.FontSize)
	}
	if cfg.RefreshTTL <= 0 {
		return cfg, fmt.Errorf("invalid refresh-ttl: %s", cfg.RefreshTTL)
	}
	if cfg.RetryBackoffMax > 0 && cfg.RetryBackoffMax < cfg.RetryBackoff {
		return cfg, fmt.Errorf("retry-backoff-max %s is below retry-backoff %s", cfg.RetryBackoffMax, cfg.RetryBackoff)
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Level, err = log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, fmt.Errorf("invalid log-level %q: %w", cfg.LogLevel, err)
	}

	// Expand ~ in paths
	cfg.FontPath = expandHome(cfg.FontPath, home)
	cfg.TimetablePath = expandHome(cfg.TimetablePath, home)
	cfg.LogPath = expandHome(cfg.LogPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// loadDotEnv exports the variables of a dotenv file into the process
// environment. Variables that are already set win. A missing file is not an
// error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("exporting %s: %w", name, err)
		}
	}
	return nil
}
