package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"chronam-essays/internal/observability"
	"chronam-essays/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS essay_records (
	lccn          TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	title         TEXT NOT NULL,
	essay         TEXT NOT NULL,
	payload       TEXT NOT NULL,
	checksum      TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	fetched_at    TIMESTAMP NOT NULL,
	people        TEXT,
	organizations TEXT,
	analyzed_at   TIMESTAMP
);
`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

// NewRepository открывает файл SQLite (или ":memory:") и создаёт схему
func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Один писатель; для ":memory:" каждое соединение было бы отдельной БД
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// UpsertRecord сохраняет или обновляет запись
func (r *Repository) UpsertRecord(ctx context.Context, rec *storage.EssayRecord) (isNew bool, isUpdated bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT checksum FROM essay_records WHERE lccn = ?`, rec.LCCN).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO essay_records (lccn, url, title, essay, payload, checksum, run_id, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.LCCN, rec.URL, rec.Title, rec.Essay, rec.Payload, rec.CheckSum, rec.RunID, rec.FetchedAt.UTC(),
		)
		if err != nil {
			return false, false, fmt.Errorf("failed to insert record: %w", err)
		}
		isNew = true
	case err != nil:
		return false, false, fmt.Errorf("failed to query database: %w", err)
	case existing != rec.CheckSum:
		_, err = tx.ExecContext(ctx, `
			UPDATE essay_records
			SET url = ?, title = ?, essay = ?, payload = ?, checksum = ?, run_id = ?, fetched_at = ?
			WHERE lccn = ?`,
			rec.URL, rec.Title, rec.Essay, rec.Payload, rec.CheckSum, rec.RunID, rec.FetchedAt.UTC(), rec.LCCN,
		)
		if err != nil {
			return false, false, fmt.Errorf("failed to update record: %w", err)
		}
		isUpdated = true
	}

	if err = tx.Commit(); err != nil {
		return false, false, fmt.Errorf("failed to commit: %w", err)
	}
	return isNew, isUpdated, nil
}

// ExistsByLCCN проверяет наличие записи по LCCN
func (r *Repository) ExistsByLCCN(ctx context.Context, lccn string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM essay_records WHERE lccn = ?`, lccn).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query database: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) GetRecordCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM essay_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

// SaveEntities обновляет колонки анализа; запись без строки в БД пропускается
func (r *Repository) SaveEntities(ctx context.Context, lccn string, people, organizations []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	peopleJSON, err := json.Marshal(nonNil(people))
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	orgsJSON, err := json.Marshal(nonNil(organizations))
	if err != nil {
		return fmt.Errorf("failed to encode organizations: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE essay_records SET people = ?, organizations = ?, analyzed_at = ?
		WHERE lccn = ?`,
		string(peopleJSON), string(orgsJSON), time.Now().UTC(), lccn,
	)
	if err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		r.logger.Debug("No stored record for analyzed essay", "lccn", lccn)
	}
	return nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
