// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// PagePlaceholder подставляется номером страницы в collector.listing_url_template
const PagePlaceholder = "{page}"

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	HTTP          HttpConfig          `yaml:"http"`
	Collector     CollectorConfig     `yaml:"collector"`
	Harvester     HarvesterConfig     `yaml:"harvester"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type HttpConfig struct {
	UserAgent                 string `yaml:"user_agent"`
	UserAgentsFile            string `yaml:"user_agents_file"`
	UserAgentSeed             int64  `yaml:"user_agent_seed"`
	MaxRetries                int    `yaml:"max_retries"`
	MaxIdleConnections        int    `yaml:"max_idle_connections"`
	MaxIdleConnectionsPerHost int    `yaml:"max_idle_connections_per_host"`
	IdleConnectionTimeoutS    int    `yaml:"idle_connection_timeout_s"`
	IgnoreRobots              bool   `yaml:"ignore_robots"`
	RobotsCacheTTLHours       int    `yaml:"robots_cache_ttl_hours"`
}

type CollectorConfig struct {
	ListingURLTemplate string `yaml:"listing_url_template"`
	Pages              int    `yaml:"pages"`
	PageDelayMS        int    `yaml:"page_delay_ms"`
	RequestTimeoutMS   int    `yaml:"request_timeout_ms"`
	ContainPageErrors  bool   `yaml:"contain_page_errors"`
	OutputFile         string `yaml:"output_file"`
}

type HarvesterConfig struct {
	RequestTimeoutMS int    `yaml:"request_timeout_ms"`
	DelayMS          int    `yaml:"delay_ms"`
	InputFile        string `yaml:"input_file"`
	OutputFile       string `yaml:"output_file"`
	ErrorLogFile     string `yaml:"error_log_file"`
}

type NormalizeConfig struct {
	TrimNBSP        bool `yaml:"trim_nbsp"`
	CollapseSpaces  bool `yaml:"collapse_spaces"`
	MaxPreviewChars int  `yaml:"max_preview_chars"`
}

type AnalysisConfig struct {
	InputFile      string   `yaml:"input_file"`
	OutputFile     string   `yaml:"output_file"`
	XLSXFile       string   `yaml:"xlsx_file"`
	ContextWidth   int      `yaml:"context_width"`
	DetectLanguage bool     `yaml:"detect_language"`
	Languages      []string `yaml:"languages"`
	OrgHeadNouns   []string `yaml:"org_head_nouns"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath       string `yaml:"log_path"`
	LogLevel      string `yaml:"log_level"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	MetricsPath   string `yaml:"metrics_path"`
}

// Validation
func (c *Config) Validate() error {
	if c.Collector.ListingURLTemplate == "" {
		return fmt.Errorf("collector.listing_url_template is required")
	}
	if !strings.Contains(c.Collector.ListingURLTemplate, PagePlaceholder) {
		return fmt.Errorf("collector.listing_url_template must contain %s", PagePlaceholder)
	}
	if c.Collector.Pages <= 0 {
		return fmt.Errorf("collector.pages must be > 0")
	}
	if c.Collector.PageDelayMS < 0 {
		return fmt.Errorf("collector.page_delay_ms must be >= 0")
	}
	if c.Collector.RequestTimeoutMS < 0 {
		return fmt.Errorf("collector.request_timeout_ms must be >= 0")
	}
	if c.Collector.OutputFile == "" {
		return fmt.Errorf("collector.output_file is required")
	}
	if c.Harvester.RequestTimeoutMS <= 0 {
		return fmt.Errorf("harvester.request_timeout_ms must be > 0")
	}
	if c.Harvester.DelayMS < 0 {
		return fmt.Errorf("harvester.delay_ms must be >= 0")
	}
	if c.Harvester.InputFile == "" || c.Harvester.OutputFile == "" || c.Harvester.ErrorLogFile == "" {
		return fmt.Errorf("harvester.input_file, output_file and error_log_file are required")
	}
	if c.HTTP.UserAgent == "" && c.HTTP.UserAgentsFile == "" {
		return fmt.Errorf("http.user_agent or http.user_agents_file is required")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RobotsCacheTTLHours <= 0 {
		return fmt.Errorf("http.robots_cache_ttl_hours must be > 0")
	}
	if c.Analysis.InputFile == "" || c.Analysis.OutputFile == "" {
		return fmt.Errorf("analysis.input_file and output_file are required")
	}
	if c.Analysis.ContextWidth <= 0 {
		return fmt.Errorf("analysis.context_width must be > 0")
	}
	switch c.Storage.Driver {
	case "none":
	case "sqlite", "mssql":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is %q", c.Storage.Driver)
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	default:
		return fmt.Errorf("storage.driver must be 'none', 'sqlite' or 'mssql'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetPageDelay() time.Duration {
	return time.Duration(c.Collector.PageDelayMS) * time.Millisecond
}

// GetCollectorTimeout возвращает 0, если таймаут для листинга не задан
func (c *Config) GetCollectorTimeout() time.Duration {
	return time.Duration(c.Collector.RequestTimeoutMS) * time.Millisecond
}

func (c *Config) GetHarvestTimeout() time.Duration {
	return time.Duration(c.Harvester.RequestTimeoutMS) * time.Millisecond
}

func (c *Config) GetHarvestDelay() time.Duration {
	return time.Duration(c.Harvester.DelayMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.HTTP.RobotsCacheTTLHours) * time.Hour
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}
