package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronam-essays/internal/config"
	"chronam-essays/internal/fetcher"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/scraper"
)

type fakePage struct {
	status int
	body   string
	err    error
}

type fakeFetcher struct {
	pages     map[string]fakePage
	requested []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*fetcher.FetchResponse, error) {
	f.requested = append(f.requested, url)
	page, ok := f.pages[url]
	if !ok {
		return &fetcher.FetchResponse{StatusCode: http.StatusNotFound, URL: url}, nil
	}
	if page.err != nil {
		return nil, page.err
	}
	return &fetcher.FetchResponse{StatusCode: page.status, Body: []byte(page.body), URL: url}, nil
}

func listingHTML(hrefs ...string) string {
	html := "<html><body><ul>"
	for _, h := range hrefs {
		html += fmt.Sprintf(`<li><span class="item-description-title"><a href="%s">Title</a></span></li>`, h)
	}
	return html + "</ul></body></html>"
}

func newTestCollector(cfg *config.Config, f PageFetcher) (*Collector, *[]time.Duration) {
	var pauses []time.Duration
	pacer := fetcher.NewPacerWithSleep(2*time.Second, func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return ctx.Err()
	})
	c := NewCollector(cfg, observability.NewNopLogger(), f, scraper.NewScraper(nil), pacer, observability.NewMetrics())
	return c, &pauses
}

func testConfig(pages int) *config.Config {
	return &config.Config{
		Collector: config.CollectorConfig{
			ListingURLTemplate: "https://example.org/list?c=1000&sp={page}",
			Pages:              pages,
		},
	}
}

func TestPageURLs(t *testing.T) {
	got := PageURLs("https://example.org/list?sp={page}&x={page}", 3)
	assert.Equal(t, []string{
		"https://example.org/list?sp=1&x=1",
		"https://example.org/list?sp=2&x=2",
		"https://example.org/list?sp=3&x=3",
	}, got)
	assert.Empty(t, PageURLs("https://example.org/?sp={page}", 0))
}

func TestRunCollectsLinksInPageAndDocumentOrder(t *testing.T) {
	f := &fakeFetcher{pages: map[string]fakePage{
		"https://example.org/list?c=1000&sp=1": {status: 200, body: listingHTML("https://www.loc.gov/item/sn2/", "https://www.loc.gov/item/sn1/")},
		"https://example.org/list?c=1000&sp=2": {status: 200, body: listingHTML("/item/sn3/", "https://www.loc.gov/item/sn1/")},
	}}
	c, pauses := newTestCollector(testConfig(2), f)

	links, stats, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.loc.gov/item/sn2/",
		"https://www.loc.gov/item/sn1/",
		"https://example.org/item/sn3/",
		"https://www.loc.gov/item/sn1/",
	}, links)
	assert.Equal(t, 2, stats.TotalPages)
	assert.Equal(t, 4, stats.TotalLinks)
	assert.Len(t, *pauses, 2, "pause after every page request")
	assert.Equal(t, 2*time.Second, (*pauses)[0])
}

func TestRunPageErrorIsFatalByDefault(t *testing.T) {
	f := &fakeFetcher{pages: map[string]fakePage{
		"https://example.org/list?c=1000&sp=1": {status: 200, body: listingHTML("https://www.loc.gov/item/sn1/")},
		"https://example.org/list?c=1000&sp=2": {err: errors.New("connection reset")},
		"https://example.org/list?c=1000&sp=3": {status: 200, body: listingHTML("https://www.loc.gov/item/sn3/")},
	}}
	c, _ := newTestCollector(testConfig(3), f)

	links, stats, err := c.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageFailed)
	assert.Equal(t, []string{"https://www.loc.gov/item/sn1/"}, links)
	assert.Equal(t, 1, stats.FailedPages)
	assert.Len(t, f.requested, 2, "page 3 must not be requested")
}

func TestRunContainsPageErrorsWhenConfigured(t *testing.T) {
	f := &fakeFetcher{pages: map[string]fakePage{
		"https://example.org/list?c=1000&sp=1": {status: 503},
		"https://example.org/list?c=1000&sp=2": {status: 200, body: listingHTML("https://www.loc.gov/item/sn2/")},
	}}
	cfg := testConfig(2)
	cfg.Collector.ContainPageErrors = true
	c, _ := newTestCollector(cfg, f)

	links, stats, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.loc.gov/item/sn2/"}, links)
	assert.Equal(t, 2, stats.TotalPages)
	assert.Equal(t, 1, stats.FailedPages)
}

func TestRunItemWithoutLinkFailsPage(t *testing.T) {
	broken := `<html><body><ul>
<li><span class="item-description-title"><a href="https://www.loc.gov/item/sn1/">A</a></span></li>
<li><span class="item-description-title">no anchor</span></li>
</ul></body></html>`
	pages := map[string]fakePage{
		"https://example.org/list?c=1000&sp=1": {status: 200, body: broken},
		"https://example.org/list?c=1000&sp=2": {status: 200, body: listingHTML("https://www.loc.gov/item/sn2/")},
	}

	t.Run("fatal by default", func(t *testing.T) {
		c, _ := newTestCollector(testConfig(2), &fakeFetcher{pages: pages})
		links, stats, err := c.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPageFailed)
		assert.ErrorIs(t, err, scraper.ErrMissingLink)
		assert.Empty(t, links)
		assert.Equal(t, 1, stats.FailedPages)
	})

	t.Run("contained", func(t *testing.T) {
		cfg := testConfig(2)
		cfg.Collector.ContainPageErrors = true
		c, _ := newTestCollector(cfg, &fakeFetcher{pages: pages})
		links, stats, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.loc.gov/item/sn2/"}, links)
		assert.Equal(t, 1, stats.FailedPages)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	f := &fakeFetcher{pages: map[string]fakePage{
		"https://example.org/list?c=1000&sp=1": {status: 200, body: listingHTML("https://www.loc.gov/item/sn1/")},
	}}
	c, _ := newTestCollector(testConfig(3), f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links, stats, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, links)
	assert.Equal(t, "cancelled", stats.StoppedReason)
	assert.Empty(t, f.requested)
}

func TestAccumulate(t *testing.T) {
	state := Accumulate([]PageResult{
		{Page: 1, Links: []string{"a", "b"}},
		{Page: 2, Err: ErrPageFailed},
		{Page: 3, Links: []string{"b", "c"}},
	})
	assert.Equal(t, []string{"a", "b", "b", "c"}, state.Links)
	assert.Equal(t, 3, state.TotalPages)
	assert.Equal(t, 1, state.FailedPages)
}
