package analysis

import (
	"fmt"

	"github.com/jdkato/prose/v2"
)

// Метки сущностей, которые попадают в final.csv
const (
	LabelPerson       = "PERSON"
	LabelOrganization = "ORGANIZATION"
)

type Token struct {
	Text string
	Tag  string
}

type Entity struct {
	Text  string
	Label string
}

// Document результат обработки текста: токены с POS-тегами и типизированные сущности
type Document struct {
	Tokens   []Token
	Entities []Entity
}

// Engine NLP-движок: токенизация, POS-разметка и извлечение сущностей
type Engine interface {
	Process(text string) (*Document, error)
}

// ProseEngine токенизатор, теггер (Penn Treebank) и NER из prose;
// организации выделяются отдельным чанкером по POS-тегам
type ProseEngine struct {
	orgs *OrgChunker
}

func NewProseEngine(orgs *OrgChunker) *ProseEngine {
	if orgs == nil {
		orgs = NewOrgChunker(nil)
	}
	return &ProseEngine{orgs: orgs}
}

func (e *ProseEngine) Process(text string) (*Document, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("nlp: %w", err)
	}

	proseTokens := doc.Tokens()
	tokens := make([]Token, len(proseTokens))
	for i, tok := range proseTokens {
		tokens[i] = Token{Text: tok.Text, Tag: tok.Tag}
	}

	var entities []Entity
	for _, ent := range doc.Entities() {
		entities = append(entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	entities = append(entities, e.orgs.Chunk(tokens)...)

	return &Document{Tokens: tokens, Entities: entities}, nil
}
