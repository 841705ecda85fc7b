package app

import (
	"fmt"

	"chronam-essays/internal/config"
	"chronam-essays/internal/observability"
	"chronam-essays/internal/storage"
	"chronam-essays/internal/storage/mssql"
	"chronam-essays/internal/storage/sqlite"
)

// OpenRepository создаёт хранилище по storage.driver; для "none" возвращает nil
func OpenRepository(cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case "", storage.DriverNone:
		return nil, nil
	case storage.DriverSQLite:
		repo, err := sqlite.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return repo, nil
	case storage.DriverMSSQL:
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, fmt.Errorf("open mssql storage: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, cfg.Storage.Driver)
	}
}
