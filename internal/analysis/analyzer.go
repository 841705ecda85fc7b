// Package analysis очищает эссе и извлекает из них токены, POS-теги, людей и организации.
package analysis

import (
	"context"
	"fmt"

	"chronam-essays/internal/normalize"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/record"
	"chronam-essays/internal/storage"
)

type Analyzer struct {
	engine     Engine
	normalizer *normalize.Normalizer
	logger     *observability.Logger
	metrics    *observability.Metrics
	language   *LanguageChecker   // nil: без определения языка
	repo       storage.Repository // nil: без сохранения в БД
}

func NewAnalyzer(
	engine Engine,
	n *normalize.Normalizer,
	logger *observability.Logger,
	m *observability.Metrics,
	language *LanguageChecker,
	repo storage.Repository,
) *Analyzer {
	return &Analyzer{
		engine:     engine,
		normalizer: n,
		logger:     logger,
		metrics:    m,
		language:   language,
		repo:       repo,
	}
}

// Tokenize упорядоченная последовательность токенов
func (a *Analyzer) Tokenize(text string) ([]string, error) {
	doc, err := a.engine.Process(text)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, len(doc.Tokens))
	for i, t := range doc.Tokens {
		tokens[i] = t.Text
	}
	return tokens, nil
}

// Tag пары (токен, тег), выровненные с Tokenize
func (a *Analyzer) Tag(text string) ([]Token, error) {
	doc, err := a.engine.Process(text)
	if err != nil {
		return nil, err
	}
	return doc.Tokens, nil
}

// Entities тексты сущностей PERSON и ORGANIZATION в порядке, выданном движком
func (a *Analyzer) Entities(text string) (people []string, organizations []string, err error) {
	doc, err := a.engine.Process(text)
	if err != nil {
		return nil, nil, err
	}
	people, organizations = splitEntities(doc.Entities)
	return people, organizations, nil
}

func splitEntities(entities []Entity) (people []string, organizations []string) {
	for _, ent := range entities {
		switch ent.Label {
		case LabelPerson:
			people = append(people, ent.Text)
		case LabelOrganization:
			organizations = append(organizations, ent.Text)
		}
	}
	return people, organizations
}

// CleanEssay снимает разметку с эссе записи
func (a *Analyzer) CleanEssay(rec record.Record) (string, error) {
	return a.normalizer.StrippedText(record.EssayMarkup(rec.Essay()))
}

type Stats struct {
	Total             int
	Analyzed          int
	NormalizeFailures int
	EngineFailures    int
	NonEnglish        int
	NotStored         int // нет строки в БД для сохранения сущностей
	StoppedReason     string
}

// AnalyzeRecords очищает и анализирует эссе по порядку и присоединяет результат по ключу.
// Ошибка очистки или NLP для одной строки не прерывает запуск: строка остаётся с пустыми колонками.
// При отмене возвращаются уже обработанные строки.
func (a *Analyzer) AnalyzeRecords(ctx context.Context, records []record.Record) ([]record.Analyzed, *Stats, error) {
	a.logger.Info("Starting essay analysis", "records", len(records))

	stats := &Stats{Total: len(records)}
	derived := make([]Derived, 0, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			stats.StoppedReason = "cancelled"
			a.finish(stats)
			return JoinByKey(records[:i], derived), stats, err
		}

		d := a.analyzeOne(rec, stats)
		derived = append(derived, d)
		a.metrics.EssaysAnalyzed.Inc()
		stats.Analyzed++

		a.store(ctx, d, stats)
	}

	stats.StoppedReason = "all records processed"
	a.finish(stats)
	return JoinByKey(records, derived), stats, nil
}

func (a *Analyzer) analyzeOne(rec record.Record, stats *Stats) Derived {
	d := Derived{Key: rec.Key()}

	clean, err := a.CleanEssay(rec)
	if err != nil {
		stats.NormalizeFailures++
		a.metrics.NormalizeFailures.Inc()
		a.logger.Error("Failed to strip essay markup", "lccn", d.Key, "error", err.Error())
		d.Failed = true
		return d
	}
	d.Clean = clean

	if a.language != nil && clean != "" && clean != record.Sentinel {
		if lang, ok := a.language.Detect(clean); ok && lang != "english" {
			stats.NonEnglish++
			a.metrics.NonEnglishEssays.Inc()
			a.logger.Warn("Essay is not in English", "lccn", d.Key, "language", lang)
		}
	}

	people, orgs, err := a.Entities(clean)
	if err != nil {
		stats.EngineFailures++
		a.logger.Error("Entity extraction failed", "lccn", d.Key, "error", err.Error())
		return d
	}
	d.People = people
	d.Organizations = orgs

	a.logger.Debug("Essay analyzed",
		"lccn", d.Key,
		"people", len(people),
		"organizations", len(orgs),
		"preview", a.normalizer.TruncatePreview(clean),
	)
	return d
}

func (a *Analyzer) store(ctx context.Context, d Derived, stats *Stats) {
	if a.repo == nil || d.Key == "" || d.Key == record.Sentinel {
		return
	}
	exists, err := a.repo.ExistsByLCCN(ctx, d.Key)
	if err != nil {
		a.logger.Error("Failed to look up stored record", "lccn", d.Key, "error", err.Error())
		return
	}
	if !exists {
		stats.NotStored++
		a.logger.Debug("Essay has no stored record, entities kept in CSV only", "lccn", d.Key)
		return
	}
	if err := a.repo.SaveEntities(ctx, d.Key, d.People, d.Organizations); err != nil {
		a.logger.Error("Failed to store entities", "lccn", d.Key, "error", err.Error())
	}
}

func (a *Analyzer) finish(stats *Stats) {
	a.logger.Info("Essay analysis completed",
		"total", stats.Total,
		"analyzed", stats.Analyzed,
		"normalize_failures", stats.NormalizeFailures,
		"engine_failures", stats.EngineFailures,
		"non_english", stats.NonEnglish,
		"not_stored", stats.NotStored,
		"reason", stats.StoppedReason,
	)
}

// EssayResult итог ad hoc запроса к одному эссе
type EssayResult struct {
	Key         string
	Count       int
	Concordance ConcordanceResult
	Tags        []Token
	Err         error
}

// Search считает слово и строит конкордансы по каждому эссе
func (a *Analyzer) Search(records []record.Record, word string, width int) []EssayResult {
	results := make([]EssayResult, 0, len(records))
	for _, rec := range records {
		res := EssayResult{Key: rec.Key()}

		clean, err := a.CleanEssay(rec)
		if err != nil {
			res.Err = fmt.Errorf("clean essay: %w", err)
			res.Concordance = ConcordanceResult{Word: word, Width: width}
			results = append(results, res)
			continue
		}

		tokens, err := a.Tokenize(clean)
		if err != nil {
			res.Err = fmt.Errorf("tokenize: %w", err)
			res.Concordance = ConcordanceResult{Word: word, Width: width}
			results = append(results, res)
			continue
		}

		res.Count = Count(tokens, word)
		res.Concordance = Concordance(tokens, word, width)
		results = append(results, res)
	}
	return results
}

// TagRecords POS-разметка первых limit эссе (при limit <= 0 все)
func (a *Analyzer) TagRecords(records []record.Record, limit int) []EssayResult {
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	results := make([]EssayResult, 0, len(records))
	for _, rec := range records {
		res := EssayResult{Key: rec.Key()}
		clean, err := a.CleanEssay(rec)
		if err == nil {
			res.Tags, err = a.Tag(clean)
		}
		res.Err = err
		results = append(results, res)
	}
	return results
}
