package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"chronam-essays/internal/config"
	"chronam-essays/internal/observability"
)

// BrowserFetcher загружает страницы листинга через headless Chrome (rod.enabled)
type BrowserFetcher struct {
	cfg      *config.Config
	logger   *observability.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewBrowserFetcher(cfg *config.Config, logger *observability.Logger) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg, logger: logger}
}

func (b *BrowserFetcher) connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return nil
	}

	l := launcher.New().Headless(true)
	if b.cfg.Rod.ChromePath != "" {
		l = l.Bin(b.cfg.Rod.ChromePath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.launcher = l
	b.browser = browser
	b.logger.Info("Browser started", "control_url", controlURL)
	return nil
}

// Fetch открывает страницу, ждёт загрузки и возвращает итоговый HTML.
// Статус ответа браузер не сообщает, успешная загрузка считается 200.
func (b *BrowserFetcher) Fetch(ctx context.Context, urlStr string, timeout time.Duration) (*FetchResponse, error) {
	if err := b.connect(); err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = b.cfg.GetRodPageTimeout()
	}

	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			b.logger.Warn("Failed to close page", "url", urlStr, "error", closeErr.Error())
		}
	}()

	if err := page.Timeout(timeout).Navigate(urlStr); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", urlStr, err)
	}
	if err := page.Timeout(b.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load %s: %w", urlStr, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read HTML %s: %w", urlStr, err)
	}

	return &FetchResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(html),
		URL:        urlStr,
		Headers:    http.Header{},
	}, nil
}

func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.browser = nil
	return err
}
