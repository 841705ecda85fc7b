package scraper

// Entry одна запись каталога из листинга
type Entry struct {
	Title       string
	URL         string
	SequenceNum int
}

type Selectors struct {
	ItemSelector  string   `yaml:"item_selector"`
	LinkSelectors []string `yaml:"link_selectors"`
}

// DefaultSelectors разметка листинга loc.gov: заголовок записи внутри span.item-description-title
func DefaultSelectors() *Selectors {
	return &Selectors{
		ItemSelector:  "span.item-description-title",
		LinkSelectors: []string{"a"},
	}
}
