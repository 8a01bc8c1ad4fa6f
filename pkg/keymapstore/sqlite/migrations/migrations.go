package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed *.sql
var files embed.FS

// Migrate brings the keymap store schema up to the newest embedded version.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("keymap store schema is up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Infow("migrated keymap store", "version", version)

	return nil
}
