package relational

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/systmms/secretd/internal/dserr"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

//go:embed migrations/mysql/*.sql
var mysqlMigrations embed.FS

// Bootstrap applies the one migration that creates the secrets table for
// dialect, reusing db's existing connection rather than opening a second
// one of its own.
func Bootstrap(db *sql.DB, dialect Dialect) error {
	var (
		dbDriver     database.Driver
		sourceDriver source.Driver
		err          error
	)

	switch dialect {
	case Postgres:
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			return dserr.Wrap("store/relational.Bootstrap", dserr.StoreUnavailable, err)
		}
		sourceDriver, err = iofs.New(postgresMigrations, "migrations/postgres")
	case MySQL:
		dbDriver, err = mysql.WithInstance(db, &mysql.Config{})
		if err != nil {
			return dserr.Wrap("store/relational.Bootstrap", dserr.StoreUnavailable, err)
		}
		sourceDriver, err = iofs.New(mysqlMigrations, "migrations/mysql")
	default:
		return dserr.New("store/relational.Bootstrap", dserr.Configuration, "unknown dialect")
	}
	if err != nil {
		return dserr.Wrap("store/relational.Bootstrap", dserr.Configuration, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect.String(), dbDriver)
	if err != nil {
		return dserr.Wrap("store/relational.Bootstrap", dserr.Configuration, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return dserr.Wrap("store/relational.Bootstrap", dserr.StoreUnavailable, err)
	}
	return nil
}
