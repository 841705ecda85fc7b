package analysis

import (
	"fmt"
	"strings"
)

// NoMatchesText выводится для эссе без вхождений
const NoMatchesText = "no matches"

// Count число точных совпадений токена
func Count(tokens []string, word string) int {
	n := 0
	for _, t := range tokens {
		if t == word {
			n++
		}
	}
	return n
}

// ConcordanceLine одно вхождение с контекстом фиксированной ширины
type ConcordanceLine struct {
	Index int // позиция токена
	Left  string
	Match string
	Right string
}

func (l ConcordanceLine) String() string {
	return l.Left + " " + l.Match + " " + l.Right
}

type ConcordanceResult struct {
	Word  string
	Width int
	Lines []ConcordanceLine
}

func (r ConcordanceResult) NoMatches() bool {
	return len(r.Lines) == 0
}

// Text все строки результата, либо "no matches"
func (r ConcordanceResult) Text() string {
	if r.NoMatches() {
		return NoMatchesText
	}
	lines := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = l.String()
	}
	return strings.Join(lines, "\n")
}

// Concordance ищет токен без учёта регистра и берёт width символов контекста с каждой стороны.
// Левый контекст выравнивается по правому краю, чтобы совпадения стояли в одной колонке.
func Concordance(tokens []string, word string, width int) ConcordanceResult {
	result := ConcordanceResult{Word: word, Width: width}
	if word == "" {
		return result
	}

	for i, t := range tokens {
		if !strings.EqualFold(t, word) {
			continue
		}
		left := lastRunes(strings.Join(tokens[:i], " "), width)
		right := firstRunes(strings.Join(tokens[i+1:], " "), width)
		result.Lines = append(result.Lines, ConcordanceLine{
			Index: i,
			Left:  fmt.Sprintf("%*s", width, left),
			Match: t,
			Right: right,
		})
	}
	return result
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
