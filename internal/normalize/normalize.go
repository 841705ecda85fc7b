package normalize

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"chronam-essays/internal/config"
)

// ErrInvalidEncoding эссе не является корректной UTF-8 строкой
var ErrInvalidEncoding = errors.New("essay is not valid UTF-8")

type Normalizer struct {
	cfg *config.Config
}

func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// StrippedText разбирает разметку эссе и склеивает все текстовые узлы
// в порядке документа: каждый обрезается, пустые пропускаются, разделитель пробел.
// "<p>Hello <b>world</b>.</p>" → "Hello world ."
func (n *Normalizer) StrippedText(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", ErrInvalidEncoding
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	// Удаляем script, style
	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	for _, node := range doc.Nodes {
		parts = n.collectText(node, parts)
	}

	return strings.Join(parts, " "), nil
}

func (n *Normalizer) collectText(node *html.Node, parts []string) []string {
	if node.Type == html.TextNode {
		if text := n.cleanFragment(node.Data); text != "" {
			parts = append(parts, text)
		}
		return parts
	}
	// Комментарии и doctype не являются текстом эссе
	if node.Type != html.ElementNode && node.Type != html.DocumentNode {
		return parts
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		parts = n.collectText(child, parts)
	}
	return parts
}

func (n *Normalizer) cleanFragment(text string) string {
	if n.cfg.Normalize.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	text = strings.TrimSpace(text)

	if n.cfg.Normalize.CollapseSpaces {
		// Схлопываем множественные пробелы
		text = strings.Join(strings.Fields(text), " ")
	}

	return text
}

// TruncatePreview обрезает текст до maxPreviewChars
func (n *Normalizer) TruncatePreview(text string) string {
	limit := n.cfg.Normalize.MaxPreviewChars
	if limit <= 0 || len(text) <= limit {
		return text
	}

	// Не режем посреди многобайтного символа
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	// Находим последний пробел перед лимитом
	truncated := text[:cut]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > 0 {
		return text[:lastSpace] + "…"
	}

	return truncated + "…"
}
