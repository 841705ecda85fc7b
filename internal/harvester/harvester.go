// Package harvester последовательно загружает JSON-записи каталога по собранным ссылкам.
package harvester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chronam-essays/internal/checksum"
	"chronam-essays/internal/config"
	"chronam-essays/internal/fetcher"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/pipeline"
	"chronam-essays/internal/record"
	"chronam-essays/internal/storage"
)

// RecordFetcher выполняет GET с таймаутом
type RecordFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetcher.FetchResponse, error)
}

// ErrorSink журнал URL, которые не удалось загрузить
type ErrorSink interface {
	Append(url string) (bool, error)
}

// ErrBadStatus ответ с не-2xx статусом
var ErrBadStatus = errors.New("unexpected response status")

type Harvester struct {
	cfg      *config.Config
	logger   *observability.Logger
	fetcher  RecordFetcher
	pacer    *fetcher.Pacer
	errLog   ErrorSink
	repo     storage.Repository // nil: без зеркалирования в БД
	metrics  *observability.Metrics
	checksum *checksum.Generator
	runID    string
	now      func() time.Time
}

func NewHarvester(
	cfg *config.Config,
	logger *observability.Logger,
	f RecordFetcher,
	p *fetcher.Pacer,
	errLog ErrorSink,
	repo storage.Repository,
	m *observability.Metrics,
	runID string,
) *Harvester {
	return &Harvester{
		cfg:      cfg,
		logger:   logger,
		fetcher:  f,
		pacer:    p,
		errLog:   errLog,
		repo:     repo,
		metrics:  m,
		checksum: checksum.NewGenerator(),
		runID:    runID,
		now:      time.Now,
	}
}

// Outcome результат одной попытки: либо запись, либо ошибка
type Outcome struct {
	Link   string
	URL    string
	Record *record.Record
	Err    error
}

// FetchState накопленное состояние загрузки
type FetchState struct {
	Records   []record.Record
	Failed    []string
	Attempted int
}

// Apply добавляет запись или URL неудачи; исходное состояние не меняется
func (s FetchState) Apply(o Outcome) FetchState {
	s.Attempted++
	if o.Err != nil || o.Record == nil {
		failed := make([]string, 0, len(s.Failed)+1)
		s.Failed = append(append(failed, s.Failed...), o.URL)
		return s
	}
	records := make([]record.Record, 0, len(s.Records)+1)
	s.Records = append(append(records, s.Records...), *o.Record)
	return s
}

func Accumulate(outcomes []Outcome) FetchState {
	return pipeline.Fold(FetchState{}, outcomes, FetchState.Apply)
}

type Stats struct {
	Attempted     int
	Succeeded     int
	Failed        int
	New           int
	Updated       int
	Unchanged     int
	Stored        int // записей в БД после запуска; -1 без хранилища
	StoppedReason string
}

// Run загружает записи по порядку. Ошибка отдельной ссылки не прерывает запуск;
// при отмене ctx возвращаются уже полученные записи.
func (h *Harvester) Run(ctx context.Context, links []string) ([]record.Record, *Stats, error) {
	h.logger.Info("Starting record fetch",
		"links", len(links),
		"timeout", h.cfg.GetHarvestTimeout(),
		"delay", h.pacer.Delay(),
		"run_id", h.runID,
	)

	stats := &Stats{}
	state := FetchState{}

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			stats.StoppedReason = "cancelled"
			h.finish(ctx, state, stats)
			return state.Records, stats, err
		}

		outcome := h.fetchOne(ctx, link)
		state = state.Apply(outcome)
		h.metrics.RecordsAttempted.Inc()

		if outcome.Err != nil {
			h.recordFailure(outcome)
		} else {
			h.metrics.RecordsFetched.Inc()
			h.logger.Debug("Record fetched",
				"n", i+1,
				"url", outcome.URL,
				"lccn", outcome.Record.Key(),
			)
			h.mirror(ctx, *outcome.Record, stats)
		}

		// Пауза после каждой попытки, успешной или нет
		if err := h.pacer.Pause(ctx); err != nil {
			stats.StoppedReason = "cancelled"
			h.finish(ctx, state, stats)
			return state.Records, stats, err
		}
	}

	stats.StoppedReason = "all links processed"
	h.finish(ctx, state, stats)
	return state.Records, stats, nil
}

func (h *Harvester) fetchOne(ctx context.Context, link string) Outcome {
	outcome := Outcome{Link: link, URL: record.DeriveURL(link)}

	resp, err := h.fetcher.Fetch(ctx, outcome.URL, h.cfg.GetHarvestTimeout())
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if !resp.IsSuccess() {
		outcome.Err = fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
		return outcome
	}

	rec, err := record.ParseJSON(resp.Body)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Record = &rec
	return outcome
}

func (h *Harvester) recordFailure(o Outcome) {
	h.metrics.RecordsFailed.Inc()
	h.logger.Warn("Record fetch failed", "url", o.URL, "error", o.Err.Error())

	if _, err := h.errLog.Append(o.URL); err != nil {
		h.logger.Error("Failed to write error log", "url", o.URL, "error", err.Error())
	}
}

// mirror сохраняет запись в БД; ошибки хранилища только логируются
func (h *Harvester) mirror(ctx context.Context, rec record.Record, stats *Stats) {
	if h.repo == nil {
		return
	}

	key := rec.Key()
	if key == "" || key == record.Sentinel {
		h.logger.Debug("Skipping record without LCCN", "url", rec.Get("url"))
		return
	}

	payload, err := json.Marshal(rec.Map())
	if err != nil {
		h.logger.Error("Failed to encode record", "lccn", key, "error", err.Error())
		return
	}

	isNew, isUpdated, err := h.repo.UpsertRecord(ctx, &storage.EssayRecord{
		LCCN:      key,
		URL:       rec.Get("url"),
		Title:     rec.Get("title"),
		Essay:     rec.Essay(),
		Payload:   string(payload),
		CheckSum:  h.checksum.GenerateRecordHash(rec.Values()),
		RunID:     h.runID,
		FetchedAt: h.now(),
	})
	if err != nil {
		h.logger.Error("Failed to store record", "lccn", key, "error", err.Error())
		return
	}

	switch {
	case isNew:
		stats.New++
	case isUpdated:
		stats.Updated++
	default:
		stats.Unchanged++
	}
}

func (h *Harvester) finish(ctx context.Context, state FetchState, stats *Stats) {
	stats.Attempted = state.Attempted
	stats.Succeeded = len(state.Records)
	stats.Failed = len(state.Failed)
	stats.Stored = h.storedCount(ctx)

	h.logger.Info("Record fetch completed",
		"attempted", stats.Attempted,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"new", stats.New,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"stored", stats.Stored,
		"reason", stats.StoppedReason,
	)
}

// storedCount итоговое число записей в хранилище; считается и после отмены запуска
func (h *Harvester) storedCount(ctx context.Context) int {
	if h.repo == nil {
		return -1
	}
	count, err := h.repo.GetRecordCount(context.WithoutCancel(ctx))
	if err != nil {
		h.logger.Warn("Failed to count stored records", "error", err.Error())
		return -1
	}
	return count
}
