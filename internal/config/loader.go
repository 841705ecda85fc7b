package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultListingURLTemplate = "https://www.loc.gov/collections/directory-of-us-newspapers-in-american-libraries/?all=true&c=1000&fa=partof_collection:chronicling+america&sp={page}"

// Defaults значения по умолчанию; LoadConfig декодирует файл поверх них
func Defaults() Config {
	return Config{
		Backoff: BackoffConfig{
			MinMS:     250,
			MaxMS:     2000,
			JitterPct: 20,
		},
		HTTP: HttpConfig{
			UserAgent:                 "chronam-essays/1.0",
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
			RobotsCacheTTLHours:       12,
		},
		Collector: CollectorConfig{
			ListingURLTemplate: DefaultListingURLTemplate,
			Pages:              4,
			PageDelayMS:        2000,
			OutputFile:         "lc_output.csv",
		},
		Harvester: HarvesterConfig{
			RequestTimeoutMS: 15000,
			DelayMS:          800,
			InputFile:        "lc_output.csv",
			OutputFile:       "raw.csv",
			ErrorLogFile:     "errors.txt",
		},
		Normalize: NormalizeConfig{
			MaxPreviewChars: 200,
		},
		Analysis: AnalysisConfig{
			InputFile:    "raw.csv",
			OutputFile:   "final.csv",
			ContextWidth: 35,
			Languages:    []string{"english", "spanish", "french", "german", "italian"},
		},
		Storage: StorageConfig{
			Driver:           "none",
			CommandTimeoutMS: 5000,
		},
		Rod: RodConfig{
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
		},
	}
}

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем, чтобы не перезаписать основную
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	// YAML декодируется поверх Defaults: явный 0 в файле остаётся нулём
	cfg := Defaults()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}
