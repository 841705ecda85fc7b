package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
collector:
  pages: 2
observability:
  log_level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Collector.Pages != 2 {
		t.Errorf("Collector.Pages = %d, want 2", cfg.Collector.Pages)
	}
	if cfg.Collector.ListingURLTemplate != DefaultListingURLTemplate {
		t.Errorf("ListingURLTemplate = %q, want default", cfg.Collector.ListingURLTemplate)
	}
	if cfg.Harvester.ErrorLogFile != "errors.txt" {
		t.Errorf("ErrorLogFile = %q, want errors.txt", cfg.Harvester.ErrorLogFile)
	}
	if got := cfg.GetHarvestTimeout().Seconds(); got != 15 {
		t.Errorf("GetHarvestTimeout() = %vs, want 15s", got)
	}
	if cfg.Analysis.ContextWidth != 35 {
		t.Errorf("ContextWidth = %d, want 35", cfg.Analysis.ContextWidth)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Observability.LogLevel)
	}
	if cfg.Storage.Driver != "none" {
		t.Errorf("Storage.Driver = %q, want none", cfg.Storage.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"template without placeholder", func(c *Config) { c.Collector.ListingURLTemplate = "https://example.com/list" }, "{page}"},
		{"zero pages", func(c *Config) { c.Collector.Pages = 0 }, "collector.pages"},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.driver"},
		{"sqlite without dsn", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.dsn"},
		{"backoff inverted", func(c *Config) { c.Backoff.MinMS = 5000 }, "backoff.min_ms"},
		{"no user agent source", func(c *Config) { c.HTTP.UserAgent = "" }, "http.user_agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSelectorsFallbackAndFile(t *testing.T) {
	cfg := Defaults()

	sel, err := cfg.Selectors(t.TempDir())
	if err != nil {
		t.Fatalf("Selectors() error = %v", err)
	}
	if sel.ItemSelector != "span.item-description-title" {
		t.Errorf("default ItemSelector = %q", sel.ItemSelector)
	}

	dir := t.TempDir()
	writeFile(t, dir, "selectors.yaml", `
item_selector: "div.result"
link_selectors: ["a.title"]
`)
	cfg.SelectorsFile = "selectors.yaml"
	sel, err = cfg.Selectors(dir)
	if err != nil {
		t.Fatalf("Selectors() error = %v", err)
	}
	if sel.ItemSelector != "div.result" || sel.LinkSelectors[0] != "a.title" {
		t.Errorf("loaded selectors = %+v", sel)
	}

	writeFile(t, dir, "partial.yaml", `link_selectors: ["a.title"]`)
	cfg.SelectorsFile = "partial.yaml"
	sel, err = cfg.Selectors(dir)
	if err != nil {
		t.Fatalf("Selectors() error = %v", err)
	}
	if sel.ItemSelector != "span.item-description-title" || sel.LinkSelectors[0] != "a.title" {
		t.Errorf("partial selectors = %+v, want default item selector", sel)
	}

	writeFile(t, dir, "broken.yaml", `link_selectors: ["a", "  "]`)
	cfg.SelectorsFile = "broken.yaml"
	if _, err := cfg.Selectors(dir); err == nil {
		t.Error("Selectors() should fail on a blank link selector")
	}
}

func TestLoadConfigKeepsExplicitZero(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
collector:
  page_delay_ms: 0
harvester:
  delay_ms: 0
normalize:
  max_preview_chars: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Harvester.DelayMS != 0 || cfg.GetHarvestDelay() != 0 {
		t.Errorf("Harvester.DelayMS = %d, want explicit 0", cfg.Harvester.DelayMS)
	}
	if cfg.Collector.PageDelayMS != 0 {
		t.Errorf("Collector.PageDelayMS = %d, want explicit 0", cfg.Collector.PageDelayMS)
	}
	if cfg.Normalize.MaxPreviewChars != 0 {
		t.Errorf("Normalize.MaxPreviewChars = %d, want explicit 0", cfg.Normalize.MaxPreviewChars)
	}
	// Незаданные ключи по-прежнему получают значения по умолчанию
	if cfg.Harvester.RequestTimeoutMS != 15000 || cfg.Collector.Pages != 4 {
		t.Errorf("defaults lost: timeout=%d pages=%d", cfg.Harvester.RequestTimeoutMS, cfg.Collector.Pages)
	}
}

func TestLoadConfigEmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Harvester.DelayMS != 800 {
		t.Errorf("Harvester.DelayMS = %d, want 800", cfg.Harvester.DelayMS)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		dir, path, want string
	}{
		{"/etc/chronam", "user_agents.txt", filepath.Join("/etc/chronam", "user_agents.txt")},
		{"/etc/chronam", "/abs/agents.txt", "/abs/agents.txt"},
		{"", "user_agents.txt", "user_agents.txt"},
		{"/etc/chronam", "", ""},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.dir, tt.path); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestShippedConfig(t *testing.T) {
	configDir := filepath.Join("..", "..", "configs")
	cfg, err := LoadConfig(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	// Link Collector по умолчанию без явного таймаута
	if cfg.Collector.RequestTimeoutMS != 0 || cfg.GetCollectorTimeout() != 0 {
		t.Errorf("Collector.RequestTimeoutMS = %d, want 0", cfg.Collector.RequestTimeoutMS)
	}
	if got := ResolvePath(configDir, cfg.HTTP.UserAgentsFile); got != filepath.Join(configDir, "user_agents.txt") {
		t.Errorf("user agents path = %q", got)
	}
	if _, err := cfg.Selectors(configDir); err != nil {
		t.Errorf("Selectors() error = %v", err)
	}
}
