package analysis

import (
	"strings"
)

// DefaultOrgHeadNouns существительные, которыми обычно заканчивается или открывается название организации
var DefaultOrgHeadNouns = []string{
	"Association", "Bank", "Board", "Church", "Club", "College", "Committee",
	"Company", "Co.", "Congress", "Corporation", "Council", "Department",
	"Institute", "League", "Legion", "Lodge", "Office", "Order", "Party",
	"Press", "Railroad", "Railway", "School", "Society", "Union", "University",
}

// OrgChunker собирает цепочки имён собственных (NNP/NNPS), допускающие внутри
// "of", "and", "&", и помечает как ORGANIZATION те, что содержат head noun
type OrgChunker struct {
	heads map[string]struct{}
}

func NewOrgChunker(headNouns []string) *OrgChunker {
	if len(headNouns) == 0 {
		headNouns = DefaultOrgHeadNouns
	}
	heads := make(map[string]struct{}, len(headNouns))
	for _, h := range headNouns {
		heads[strings.ToLower(h)] = struct{}{}
	}
	return &OrgChunker{heads: heads}
}

func isProperNoun(tag string) bool {
	return tag == "NNP" || tag == "NNPS"
}

func isConnector(text string) bool {
	switch strings.ToLower(text) {
	case "of", "and", "&", "for":
		return true
	}
	return false
}

// Chunk возвращает спаны в порядке документа
func (c *OrgChunker) Chunk(tokens []Token) []Entity {
	var entities []Entity

	i := 0
	for i < len(tokens) {
		if !isProperNoun(tokens[i].Tag) {
			i++
			continue
		}

		// Расширяем спан: NNP (connector NNP)*
		end := i + 1
		for end < len(tokens) {
			if isProperNoun(tokens[end].Tag) {
				end++
				continue
			}
			if isConnector(tokens[end].Text) && end+1 < len(tokens) && isProperNoun(tokens[end+1].Tag) {
				end += 2
				continue
			}
			break
		}

		span := tokens[i:end]
		if len(span) >= 2 && c.hasHead(span) {
			entities = append(entities, Entity{Text: joinTokens(span), Label: LabelOrganization})
		}
		i = end
	}

	return entities
}

func (c *OrgChunker) hasHead(span []Token) bool {
	for _, tok := range span {
		if _, ok := c.heads[strings.ToLower(tok.Text)]; ok {
			return true
		}
	}
	return false
}

func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
