package analysis

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageChecker определяет язык эссе; теггер и NER обучены на английском
type LanguageChecker struct {
	detector lingua.LanguageDetector
}

// NewLanguageChecker names: названия языков lingua ("english", "french", ...), регистр не важен.
// Английский добавляется всегда.
func NewLanguageChecker(names []string) (*LanguageChecker, error) {
	byName := make(map[string]lingua.Language)
	for _, l := range lingua.AllLanguages() {
		byName[strings.ToLower(l.String())] = l
	}

	selected := map[lingua.Language]struct{}{lingua.English: {}}
	for _, name := range names {
		l, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		selected[l] = struct{}{}
	}
	if len(selected) < 2 {
		return nil, fmt.Errorf("language detection needs at least one language besides english")
	}

	languages := make([]lingua.Language, 0, len(selected))
	for l := range selected {
		languages = append(languages, l)
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &LanguageChecker{detector: detector}, nil
}

// Detect возвращает название языка в нижнем регистре; false если язык не определён
func (c *LanguageChecker) Detect(text string) (string, bool) {
	language, exists := c.detector.DetectLanguageOf(text)
	if !exists {
		return "", false
	}
	return strings.ToLower(language.String()), true
}
