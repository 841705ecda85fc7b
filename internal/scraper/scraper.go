package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissingLink элемент листинга найден, но ни один link_selector не дал href
var ErrMissingLink = errors.New("listing item has no link")

type Scraper struct {
	selectors *Selectors
}

func NewScraper(selectors *Selectors) *Scraper {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	return &Scraper{
		selectors: selectors,
	}
}

// ParseListing парсит страницу листинга и возвращает записи в порядке документа.
// Элемент без ссылки даёт ErrMissingLink; найденные записи при этом тоже возвращаются.
// Относительные ссылки разрешаются относительно pageURL.
func (s *Scraper) ParseListing(html string, pageURL string) ([]*Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var base *url.URL
	if pageURL != "" {
		base, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
	}

	var entries []*Entry
	var missing []int
	sequenceNum := 0

	doc.Find(s.selectors.ItemSelector).Each(func(i int, sel *goquery.Selection) {
		href, title := tryLinkSelectors(sel, s.selectors.LinkSelectors)
		if href == "" {
			missing = append(missing, i)
			return
		}

		entries = append(entries, &Entry{
			Title:       title,
			URL:         resolveURL(base, href),
			SequenceNum: sequenceNum,
		})
		sequenceNum++
	})

	// Молча терять запись нельзя: вызывающий решает, фатальна ли страница
	if len(missing) > 0 {
		return entries, fmt.Errorf("%w: items %v of %d", ErrMissingLink, missing, len(missing)+len(entries))
	}

	return entries, nil
}

// Links возвращает только ссылки записей
func Links(entries []*Entry) []string {
	links := make([]string, 0, len(entries))
	for _, e := range entries {
		links = append(links, e.URL)
	}
	return links
}

func tryLinkSelectors(s *goquery.Selection, selectors []string) (href string, title string) {
	for _, selector := range selectors {
		a := s.Find(selector).First()
		attr, exists := a.Attr("href")
		if exists && strings.TrimSpace(attr) != "" {
			return strings.TrimSpace(attr), strings.TrimSpace(a.Text())
		}
	}
	return "", ""
}

func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	return base.ResolveReference(ref).String()
}
