// Package app собирает стадии пайплайна из конфигурации и запускает их.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"chronam-essays/internal/analysis"
	"chronam-essays/internal/collector"
	"chronam-essays/internal/config"
	"chronam-essays/internal/dataset"
	"chronam-essays/internal/fetcher"
	"chronam-essays/internal/harvester"
	"chronam-essays/internal/normalize"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/record"
	"chronam-essays/internal/scraper"
	"chronam-essays/internal/storage"
)

type Orchestrator struct {
	cfg       *config.Config
	configDir string
	logger    *observability.Logger
	metrics   *observability.Metrics
	runID     string

	fetcher *fetcher.Fetcher
	browser *fetcher.BrowserFetcher // nil при rod.enabled=false
	repo    storage.Repository      // nil при storage.driver=none
}

// NewOrchestrator configDir нужен для относительных путей selectors_file и user_agents_file
func NewOrchestrator(cfg *config.Config, configDir string, logger *observability.Logger) (*Orchestrator, error) {
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	agents, err := userAgents(cfg, configDir)
	if err != nil {
		return nil, err
	}

	repo, err := OpenRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:       cfg,
		configDir: configDir,
		logger:    logger,
		metrics:   observability.NewMetrics(),
		runID:     runID,
		fetcher:   fetcher.NewFetcher(cfg, logger, agents),
		repo:      repo,
	}
	if cfg.Rod.Enabled {
		o.browser = fetcher.NewBrowserFetcher(cfg, logger)
	}
	return o, nil
}

// userAgents список User-Agent ищется относительно каталога конфига, как и selectors_file
func userAgents(cfg *config.Config, configDir string) (fetcher.UserAgentSource, error) {
	if cfg.HTTP.UserAgentsFile == "" {
		return fetcher.StaticUserAgent(cfg.HTTP.UserAgent), nil
	}
	agents, err := fetcher.LoadUserAgents(config.ResolvePath(configDir, cfg.HTTP.UserAgentsFile))
	if err != nil {
		return nil, err
	}
	return fetcher.NewUserAgentPool(agents, cfg.HTTP.UserAgentSeed)
}

func (o *Orchestrator) RunID() string {
	return o.runID
}

// Collect собирает ссылки со страниц листинга и пишет их в collector.output_file.
// Ссылки, собранные до ошибки или отмены, тоже сохраняются.
func (o *Orchestrator) Collect(ctx context.Context) (*collector.Stats, error) {
	selectors, err := o.cfg.Selectors(o.configDir)
	if err != nil {
		return nil, err
	}

	var pages collector.PageFetcher = o.fetcher
	if o.browser != nil {
		pages = o.browser
	}

	c := collector.NewCollector(
		o.cfg,
		o.logger.With("stage", "collect"),
		pages,
		scraper.NewScraper(selectors),
		fetcher.NewPacer(o.cfg.GetPageDelay()),
		o.metrics,
	)

	links, stats, runErr := c.Run(ctx)
	if err := dataset.WriteLinks(o.cfg.Collector.OutputFile, links); err != nil {
		return stats, errors.Join(runErr, err)
	}
	o.logger.Info("Links saved", "path", o.cfg.Collector.OutputFile, "links", len(links))
	return stats, runErr
}

// Fetch загружает JSON-записи по ссылкам из harvester.input_file в harvester.output_file
func (o *Orchestrator) Fetch(ctx context.Context) (*harvester.Stats, error) {
	links, err := dataset.ReadLinks(o.cfg.Harvester.InputFile)
	if err != nil {
		return nil, err
	}

	errLog, err := dataset.OpenErrorLog(o.cfg.Harvester.ErrorLogFile)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := errLog.Close(); closeErr != nil {
			o.logger.Warn("Failed to close error log", "error", closeErr.Error())
		}
	}()

	h := harvester.NewHarvester(
		o.cfg,
		o.logger.With("stage", "fetch"),
		o.fetcher,
		fetcher.NewPacer(o.cfg.GetHarvestDelay()),
		errLog,
		o.repo,
		o.metrics,
		o.runID,
	)

	records, stats, runErr := h.Run(ctx, links)
	if err := dataset.WriteRecords(o.cfg.Harvester.OutputFile, records); err != nil {
		return stats, errors.Join(runErr, err)
	}
	o.logger.Info("Records saved",
		"path", o.cfg.Harvester.OutputFile,
		"records", len(records),
		"error_log", errLog.Path(),
		"errors", errLog.Count(),
	)
	return stats, runErr
}

// Analyze очищает эссе из analysis.input_file и пишет final.csv (и xlsx, если задан)
func (o *Orchestrator) Analyze(ctx context.Context) (*analysis.Stats, error) {
	records, err := o.LoadRecords()
	if err != nil {
		return nil, err
	}

	analyzer, err := o.NewAnalyzer()
	if err != nil {
		return nil, err
	}

	rows, stats, runErr := analyzer.AnalyzeRecords(ctx, records)
	if err := dataset.WriteAnalyzed(o.cfg.Analysis.OutputFile, rows); err != nil {
		return stats, errors.Join(runErr, err)
	}
	if o.cfg.Analysis.XLSXFile != "" {
		if err := dataset.WriteAnalyzedXLSX(o.cfg.Analysis.XLSXFile, rows); err != nil {
			return stats, errors.Join(runErr, err)
		}
	}
	o.logger.Info("Analyzed essays saved",
		"path", o.cfg.Analysis.OutputFile,
		"xlsx", o.cfg.Analysis.XLSXFile,
		"rows", len(rows),
	)
	return stats, runErr
}

// Run три стадии подряд; следующая стадия читает файл, записанный предыдущей
func (o *Orchestrator) Run(ctx context.Context) error {
	if _, err := o.Collect(ctx); err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if _, err := o.Fetch(ctx); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if _, err := o.Analyze(ctx); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}

// LoadRecords записи из analysis.input_file
func (o *Orchestrator) LoadRecords() ([]record.Record, error) {
	return dataset.ReadRecords(o.cfg.Analysis.InputFile)
}

func (o *Orchestrator) NewAnalyzer() (*analysis.Analyzer, error) {
	var language *analysis.LanguageChecker
	if o.cfg.Analysis.DetectLanguage {
		checker, err := analysis.NewLanguageChecker(o.cfg.Analysis.Languages)
		if err != nil {
			return nil, fmt.Errorf("language detection: %w", err)
		}
		language = checker
	}

	return analysis.NewAnalyzer(
		analysis.NewProseEngine(analysis.NewOrgChunker(o.cfg.Analysis.OrgHeadNouns)),
		normalize.NewNormalizer(o.cfg),
		o.logger.With("stage", "analyze"),
		o.metrics,
		language,
		o.repo,
	), nil
}

// Close освобождает ресурсы и выгружает метрики запуска
func (o *Orchestrator) Close() error {
	var errs []error
	if err := o.metrics.WriteTextfile(o.cfg.Observability.MetricsPath); err != nil {
		errs = append(errs, err)
	}
	if o.browser != nil {
		if err := o.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if o.repo != nil {
		if err := o.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close repository: %w", err))
		}
	}
	return errors.Join(errs...)
}
