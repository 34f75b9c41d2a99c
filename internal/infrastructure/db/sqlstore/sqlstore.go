// Package sqlstore implements the repositories and the unit of work on top of
// gorm. sqlite is the default driver; postgres and mysql are selected by name.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marsone/crew-api/internal/core/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config captures the settings required to open the relational store.
type Config struct {
	Driver   string
	DSN      string
	LogLevel string
	Logger   zerolog.Logger
}

// Store owns the connection pool and hands out one unit of work per call.
type Store struct {
	db *gorm.DB
}

var _ ports.Transactor = (*Store)(nil)

// Open connects to the configured database and migrates the schema.
func Open(cfg Config) (*Store, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(cfg.Logger, cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "" || cfg.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		// sqlite allows a single writer; one connection keeps transactions serialised.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = "crew.db"
		}
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(withForeignKeys(dsn)), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&jobModel{}, "Categories", &jobCategoryModel{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}
	if err := db.AutoMigrate(&userModel{}, &categoryModel{}, &jobModel{}, &jobCategoryModel{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	return nil
}

// withForeignKeys turns on sqlite foreign key enforcement, which is off by default.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ensureDirForSQLite creates the parent directory of a file-backed database.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// WithinTx runs fn in a transaction. fn's error is returned unchanged after rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&unitOfWork{db: tx})
	})
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type unitOfWork struct {
	db *gorm.DB
}

func (u *unitOfWork) Users() ports.UserRepository          { return &userRepository{db: u.db} }
func (u *unitOfWork) Jobs() ports.JobRepository            { return &jobRepository{db: u.db} }
func (u *unitOfWork) Categories() ports.CategoryRepository { return &categoryRepository{db: u.db} }

// gormLogWriter forwards gorm's formatted log lines to zerolog.
type gormLogWriter struct {
	log zerolog.Logger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.log.Debug().Str("component", "gorm").Msgf(format, args...)
}

func newGormLogger(log zerolog.Logger, level string) logger.Interface {
	return logger.New(gormLogWriter{log: log}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
