package db

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/emilianohg/dutyroster/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var db *sql.DB

// MigrationStatus compares the schema version on disk with the newest embedded migration.
type MigrationStatus struct {
	CurrentVersion uint
	LatestVersion  uint
	Dirty          bool
	Pending        bool
}

// Open returns the shared connection to the roster database named by cfg. The schema is
// left as found; callers decide whether to migrate.
func Open(cfg *config.Config) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}

	return OpenPath(dbPath)
}

// OpenPath is Open for an explicit file. Foreign keys are enforced and writers wait on a busy lock.
func OpenPath(path string) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db = conn

	return db, nil
}

// OpenAndMigrate is Open followed by RunMigrations.
func OpenAndMigrate(cfg *config.Config) (*sql.DB, error) {
	database, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(); err != nil {
		return nil, err
	}

	return database, nil
}

// Close releases the shared connection so a later Open starts fresh.
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetMigrationStatus reports how far the open database lags the embedded migrations.
func GetMigrationStatus() (*MigrationStatus, error) {
	if db == nil {
		return nil, fmt.Errorf("database not open")
	}

	m, err := getMigrator(db)
	if err != nil {
		return nil, err
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return nil, err
	}

	latestVersion, err := latestMigration()
	if err != nil {
		return nil, err
	}

	status := &MigrationStatus{
		CurrentVersion: version,
		LatestVersion:  latestVersion,
		Dirty:          dirty,
		Pending:        version < latestVersion,
	}

	return status, nil
}

// RunMigrations brings the shared connection up to the newest schema.
func RunMigrations() error {
	if db == nil {
		return fmt.Errorf("database not open")
	}
	return Migrate(db)
}

// Migrate brings conn up to the newest schema. Tests use it on throwaway databases.
func Migrate(conn *sql.DB) error {
	m, err := getMigrator(conn)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// latestMigration is the highest version among the embedded migration files.
func latestMigration() (uint, error) {
	src, err := migrationSource()
	if err != nil {
		return 0, err
	}

	var latestVersion uint
	first, err := src.First()
	if err == nil {
		latestVersion = first
		for {
			next, err := src.Next(latestVersion)
			if err != nil {
				break
			}
			latestVersion = next
		}
	}
	return latestVersion, nil
}

func migrationSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

func getMigrator(conn *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database for migrations: %w", err)
	}

	src, err := migrationSource()
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "sqlite3", driver)
}
