package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tinytelemetry/homeroom/internal/model"
)

// isolate points HOME at an empty directory and clears the credential
// variables so the developer's environment does not leak in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{
		"NOTION_API_KEY", "NOTION_DATA_SOURCE_ID",
		"HOMEROOM_NOTION_API_KEY", "HOMEROOM_NOTION_DATA_SOURCE_ID",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolate(t)
	t.Setenv("NOTION_API_KEY", "secret")
	t.Setenv("NOTION_DATA_SOURCE_ID", "ds-1")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.NotionAPIKey != "secret" || cfg.NotionDataSourceID != "ds-1" {
		t.Fatalf("credentials = %q / %q", cfg.NotionAPIKey, cfg.NotionDataSourceID)
	}
	if cfg.RefreshTTL != time.Minute || cfg.FPS != 60 || cfg.FetchTimeout != 10*time.Second {
		t.Errorf("defaults: ttl=%s fps=%d timeout=%s", cfg.RefreshTTL, cfg.FPS, cfg.FetchTimeout)
	}
	if cfg.Location != time.Local {
		t.Errorf("location = %v, want Local", cfg.Location)
	}
	if cfg.APIEnabled || !cfg.StatusScreen || cfg.BlockingRefresh {
		t.Errorf("toggles: api=%v status=%v blocking=%v", cfg.APIEnabled, cfg.StatusScreen, cfg.BlockingRefresh)
	}
	if want := filepath.Join(home, ".local", "state", "homeroom", "homeroom.log"); cfg.LogPath != want {
		t.Errorf("log path = %q, want %q", cfg.LogPath, want)
	}
	if s := cfg.schema(); s.Title != "課題" || s.Due != "期限" {
		t.Errorf("schema = %+v", s)
	}
	if c := cfg.categories(); c[model.QuerySupplies] != "持ち物" {
		t.Errorf("categories = %v", c)
	}
}

func TestLoadConfig_FileAndPrefixedEnv(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, home, "config.yml", `
notion-api-key: from-file
notion-data-source-id: ds-file
timezone: Asia/Tokyo
fps: 30
refresh-ttl: 2m
font-path: ~/fonts/big.flf
supplies-category: もちもの
`)
	t.Setenv("HOMEROOM_FPS", "24")
	t.Setenv("HOMEROOM_NOTION_API_KEY", "from-env")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.ConfigPath != path {
		t.Errorf("config path = %q", cfg.ConfigPath)
	}
	if cfg.NotionAPIKey != "from-env" || cfg.NotionDataSourceID != "ds-file" {
		t.Errorf("credentials = %q / %q", cfg.NotionAPIKey, cfg.NotionDataSourceID)
	}
	if cfg.FPS != 24 || cfg.RefreshTTL != 2*time.Minute {
		t.Errorf("fps=%d ttl=%s", cfg.FPS, cfg.RefreshTTL)
	}
	if cfg.Location.String() != "Asia/Tokyo" {
		t.Errorf("location = %s", cfg.Location)
	}
	if want := filepath.Join(home, "fonts", "big.flf"); cfg.FontPath != want {
		t.Errorf("font path = %q, want %q", cfg.FontPath, want)
	}
	if cfg.categories()[model.QuerySupplies] != "もちもの" {
		t.Errorf("supplies category = %q", cfg.SuppliesCategory)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{"NOTION_DATA_SOURCE_ID": "ds"}},
		{"missing data source", map[string]string{"NOTION_API_KEY": "k"}},
		{"zero fps", map[string]string{"NOTION_API_KEY": "k", "NOTION_DATA_SOURCE_ID": "ds", "HOMEROOM_FPS": "0"}},
		{"unknown timezone", map[string]string{"NOTION_API_KEY": "k", "NOTION_DATA_SOURCE_ID": "ds", "HOMEROOM_TIMEZONE": "Mars/Olympus"}},
		{"bad log level", map[string]string{"NOTION_API_KEY": "k", "NOTION_DATA_SOURCE_ID": "ds", "HOMEROOM_LOG_LEVEL": "loud"}},
		{"backoff cap below floor", map[string]string{
			"NOTION_API_KEY": "k", "NOTION_DATA_SOURCE_ID": "ds",
			"HOMEROOM_RETRY_BACKOFF": "30s", "HOMEROOM_RETRY_BACKOFF_MAX": "10s",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "HOMEROOM_DOTENV_SET=from-file\nHOMEROOM_DOTENV_NEW=new-value\n")

	t.Setenv("HOMEROOM_DOTENV_SET", "from-env")
	t.Setenv("HOMEROOM_DOTENV_NEW", "")
	os.Unsetenv("HOMEROOM_DOTENV_NEW")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("HOMEROOM_DOTENV_SET"); got != "from-env" {
		t.Errorf("existing variable overridden: %q", got)
	}
	if got := os.Getenv("HOMEROOM_DOTENV_NEW"); got != "new-value" {
		t.Errorf("new variable = %q, want new-value", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := loadDotEnv(""); err != nil {
		t.Fatalf("empty path: %v", err)
	}
}

func TestQueryFetcher(t *testing.T) {
	t.Parallel()

	var asked []string
	src := model.ItemSourceFunc(func(_ context.Context, category string) ([]string, error) {
		asked = append(asked, category)
		return []string{"item for " + category}, nil
	})
	fetch := queryFetcher(src, model.DefaultCategories())

	got, err := fetch(context.Background(), model.QueryHomework)
	if err != nil || !slices.Equal(got, []string{"item for 課題"}) {
		t.Fatalf("homework = %v, %v", got, err)
	}
	if _, err := fetch(context.Background(), model.Query("unknown")); err == nil {
		t.Fatal("expected error for unconfigured query")
	}
	if !slices.Equal(asked, []string{"課題"}) {
		t.Fatalf("asked = %v", asked)
	}
}
