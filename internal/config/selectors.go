package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"chronam-essays/internal/scraper"
)

// LoadSelectors читает селекторы из YAML; незаданные ключи берутся из scraper.DefaultSelectors
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("Warning: failed to close selectors file: %v", closeErr)
		}
	}()

	var selectors scraper.Selectors
	if err := yaml.NewDecoder(file).Decode(&selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	// Пустая строка и пустой список считаются незаданными
	if err := mergo.Merge(&selectors, *scraper.DefaultSelectors()); err != nil {
		return nil, fmt.Errorf("failed to apply default selectors: %w", err)
	}

	if err := validateSelectors(&selectors); err != nil {
		return nil, err
	}

	return &selectors, nil
}

// Selectors возвращает селекторы листинга: из файла, если он задан, иначе встроенные
func (c *Config) Selectors(configDir string) (*scraper.Selectors, error) {
	if c.SelectorsFile == "" {
		return scraper.DefaultSelectors(), nil
	}
	return LoadSelectors(ResolvePath(configDir, c.SelectorsFile))
}

// ResolvePath относительные пути из конфига считаются от каталога конфига
func ResolvePath(configDir, path string) string {
	if path == "" || filepath.IsAbs(path) || configDir == "" {
		return path
	}
	return filepath.Join(configDir, path)
}

func validateSelectors(s *scraper.Selectors) error {
	if strings.TrimSpace(s.ItemSelector) == "" {
		return fmt.Errorf("item_selector is required")
	}
	for i, sel := range s.LinkSelectors {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("link_selectors[%d] is empty", i)
		}
	}
	return nil
}
