package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chronam-essays/internal/config"
	"chronam-essays/internal/fetcher"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/pipeline"
	"chronam-essays/internal/scraper"
)

// PageFetcher источник HTML страниц листинга (HTTP или headless браузер)
type PageFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetcher.FetchResponse, error)
}

type Collector struct {
	cfg     *config.Config
	logger  *observability.Logger
	fetcher PageFetcher
	scraper *scraper.Scraper
	pacer   *fetcher.Pacer
	metrics *observability.Metrics
}

func NewCollector(
	cfg *config.Config,
	logger *observability.Logger,
	f PageFetcher,
	s *scraper.Scraper,
	p *fetcher.Pacer,
	m *observability.Metrics,
) *Collector {
	return &Collector{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		scraper: s,
		pacer:   p,
		metrics: m,
	}
}

// PageURLs подставляет номера страниц 1..pages вместо {page}
func PageURLs(template string, pages int) []string {
	urls := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		urls = append(urls, strings.ReplaceAll(template, config.PagePlaceholder, strconv.Itoa(page)))
	}
	return urls
}

// PageResult итог обработки одной страницы листинга
type PageResult struct {
	Page  int
	URL   string
	Links []string
	Err   error
}

// LinkState накопленное состояние сборщика
type LinkState struct {
	Links       []string
	TotalPages  int
	FailedPages int
}

// Apply добавляет ссылки страницы в конец, сохраняя порядок страниц и документа
func (s LinkState) Apply(r PageResult) LinkState {
	s.TotalPages++
	if r.Err != nil {
		s.FailedPages++
		return s
	}
	links := make([]string, 0, len(s.Links)+len(r.Links))
	links = append(links, s.Links...)
	s.Links = append(links, r.Links...)
	return s
}

// Accumulate сворачивает результаты страниц в итоговое состояние
func Accumulate(results []PageResult) LinkState {
	return pipeline.Fold(LinkState{}, results, LinkState.Apply)
}

type Stats struct {
	TotalPages    int
	FailedPages   int
	TotalLinks    int
	StoppedReason string
}

// ErrPageFailed страница листинга не получена или не разобрана
var ErrPageFailed = errors.New("listing page failed")

// Run обходит страницы по порядку. По умолчанию первая ошибка страницы прерывает сбор;
// при collector.contain_page_errors страница пропускается и сбор продолжается.
// Собранные к моменту остановки ссылки возвращаются в любом случае.
func (c *Collector) Run(ctx context.Context) ([]string, *Stats, error) {
	pageURLs := PageURLs(c.cfg.Collector.ListingURLTemplate, c.cfg.Collector.Pages)

	c.logger.Info("Starting link collection",
		"pages", len(pageURLs),
		"page_delay", c.pacer.Delay(),
		"contain_page_errors", c.cfg.Collector.ContainPageErrors,
	)

	stats := &Stats{}
	state := LinkState{}

	for i, pageURL := range pageURLs {
		if err := ctx.Err(); err != nil {
			stats.StoppedReason = "cancelled"
			c.finish(state, stats)
			return state.Links, stats, err
		}

		pageNum := i + 1
		c.logger.Info("Processing page", "page", pageNum, "url", pageURL)

		result := c.collectPage(ctx, pageNum, pageURL)
		state = state.Apply(result)

		if result.Err != nil {
			c.logger.Error("Listing page failed",
				"page", pageNum,
				"url", pageURL,
				"error", result.Err.Error(),
			)
			if !c.cfg.Collector.ContainPageErrors {
				stats.StoppedReason = fmt.Sprintf("error at page %d: %v", pageNum, result.Err)
				c.finish(state, stats)
				return state.Links, stats, result.Err
			}
		} else {
			c.metrics.PagesFetched.Inc()
			c.metrics.LinksCollected.Add(float64(len(result.Links)))
			c.logger.Info("Page analysis", "page", pageNum, "links", len(result.Links), "total_links", len(state.Links))
		}

		// Пауза после каждого запроса
		if err := c.pacer.Pause(ctx); err != nil {
			stats.StoppedReason = "cancelled"
			c.finish(state, stats)
			return state.Links, stats, err
		}
	}

	stats.StoppedReason = "all pages processed"
	c.finish(state, stats)
	return state.Links, stats, nil
}

func (c *Collector) collectPage(ctx context.Context, pageNum int, pageURL string) PageResult {
	result := PageResult{Page: pageNum, URL: pageURL}

	resp, err := c.fetcher.Fetch(ctx, pageURL, c.cfg.GetCollectorTimeout())
	if err != nil {
		result.Err = fmt.Errorf("%w: fetch: %v", ErrPageFailed, err)
		return result
	}
	if !resp.IsSuccess() {
		result.Err = fmt.Errorf("%w: status %d", ErrPageFailed, resp.StatusCode)
		return result
	}

	entries, err := c.scraper.ParseListing(string(resp.Body), resp.URL)
	if err != nil {
		result.Err = fmt.Errorf("%w: parse: %w", ErrPageFailed, err)
		return result
	}

	for _, e := range entries {
		c.logger.Debug("Entry", "page", pageNum, "seq", e.SequenceNum, "title", e.Title, "url", e.URL)
	}
	result.Links = scraper.Links(entries)
	return result
}

func (c *Collector) finish(state LinkState, stats *Stats) {
	stats.TotalPages = state.TotalPages
	stats.FailedPages = state.FailedPages
	stats.TotalLinks = len(state.Links)

	c.logger.Info("Link collection completed",
		"total_pages", stats.TotalPages,
		"failed_pages", stats.FailedPages,
		"total_links", stats.TotalLinks,
		"reason", stats.StoppedReason,
	)
}
