package storage

import (
	"context"
	"errors"
	"time"
)

const (
	DriverNone   = "none"
	DriverSQLite = "sqlite"
	DriverMSSQL  = "mssql"
)

// ErrUnknownDriver storage.driver не поддерживается
var ErrUnknownDriver = errors.New("unknown storage driver")

// EssayRecord запись каталога для сохранения в БД
type EssayRecord struct {
	LCCN      string // raw_lccn без пробелов
	URL       string
	Title     string
	Essay     string
	Payload   string // JSON всех полей записи
	CheckSum  string // SHA256 значений записи
	RunID     string
	FetchedAt time.Time
}

// Repository интерфейс хранилища записей и результатов анализа
type Repository interface {
	// UpsertRecord сохраняет или обновляет запись, возвращает (isNew, isUpdated, error).
	// Запись с тем же CheckSum не перезаписывается: (false, false, nil).
	UpsertRecord(ctx context.Context, rec *EssayRecord) (isNew bool, isUpdated bool, err error)

	// ExistsByLCCN проверяет наличие записи по LCCN
	ExistsByLCCN(ctx context.Context, lccn string) (bool, error)

	// GetRecordCount количество сохранённых записей
	GetRecordCount(ctx context.Context) (int, error)

	// SaveEntities сохраняет имена людей и организаций, найденные в эссе
	SaveEntities(ctx context.Context, lccn string, people, organizations []string) error

	Close() error
}
