package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"chronam-essays/internal/observability"
	"chronam-essays/internal/storage"
)

// Ожидаемая схема:
//
//	CREATE TABLE TblEssayRecords (
//		[LCCN] NVARCHAR(64) PRIMARY KEY, [URL] NVARCHAR(512), [Title] NVARCHAR(1024),
//		[Essay] NVARCHAR(MAX), [Payload] NVARCHAR(MAX), [CheckSum] CHAR(64),
//		[RunID] UNIQUEIDENTIFIER, [FetchedAt] DATETIME2,
//		[People] NVARCHAR(MAX) NULL, [Organizations] NVARCHAR(MAX) NULL, [AnalyzedAt] DATETIME2 NULL)
type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
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

	// MERGE statement для MS SQL; неизменённая запись (тот же CheckSum) не трогается
	query := `
		MERGE INTO TblEssayRecords AS target
		USING (SELECT @LCCN AS LCCN) AS source
		ON target.[LCCN] = source.LCCN
		WHEN MATCHED AND target.[CheckSum] <> @CheckSum THEN
			UPDATE SET
				[URL] = @URL,
				[Title] = @Title,
				[Essay] = @Essay,
				[Payload] = @Payload,
				[CheckSum] = @CheckSum,
				[RunID] = @RunID,
				[FetchedAt] = @FetchedAt
		WHEN NOT MATCHED THEN
			INSERT ([LCCN], [URL], [Title], [Essay], [Payload], [CheckSum], [RunID], [FetchedAt])
			VALUES (@LCCN, @URL, @Title, @Essay, @Payload, @CheckSum, @RunID, @FetchedAt)
		OUTPUT $action;
	`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return false, false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("LCCN", rec.LCCN),
		sql.Named("URL", rec.URL),
		sql.Named("Title", rec.Title),
		sql.Named("Essay", rec.Essay),
		sql.Named("Payload", rec.Payload),
		sql.Named("CheckSum", rec.CheckSum),
		sql.Named("RunID", rec.RunID),
		sql.Named("FetchedAt", rec.FetchedAt.UTC()),
	).Scan(&action)

	if errors.Is(err, sql.ErrNoRows) {
		// Запись не изменилась
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	switch action {
	case "INSERT":
		isNew = true
	case "UPDATE":
		isUpdated = true
	}

	return isNew, isUpdated, nil
}

// ExistsByLCCN проверяет наличие записи по LCCN
func (r *Repository) ExistsByLCCN(ctx context.Context, lccn string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query := `SELECT COUNT(*) FROM TblEssayRecords WHERE LCCN = @LCCN`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var count int
	err = stmt.QueryRowContext(ctx, sql.Named("LCCN", lccn)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query database: %w", err)
	}

	return count > 0, nil
}

// GetRecordCount получает количество сохранённых записей
func (r *Repository) GetRecordCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM TblEssayRecords`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

// SaveEntities сохраняет результаты анализа эссе
func (r *Repository) SaveEntities(ctx context.Context, lccn string, people, organizations []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if people == nil {
		people = []string{}
	}
	if organizations == nil {
		organizations = []string{}
	}
	peopleJSON, err := json.Marshal(people)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	orgsJSON, err := json.Marshal(organizations)
	if err != nil {
		return fmt.Errorf("failed to encode organizations: %w", err)
	}

	query := `
		UPDATE TblEssayRecords
		SET [People] = @People, [Organizations] = @Organizations, [AnalyzedAt] = SYSUTCDATETIME()
		WHERE [LCCN] = @LCCN
	`

	_, err = r.db.ExecContext(ctx, query,
		sql.Named("People", string(peopleJSON)),
		sql.Named("Organizations", string(orgsJSON)),
		sql.Named("LCCN", lccn),
	)
	if err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
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
