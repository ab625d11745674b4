// SQLite-backed KV implementation.
//
// Entries live in a single kv_entries table keyed by string. The database
// is opened with the pure Go SQLite driver so deployments need no cgo, and
// the GORM OpenTelemetry plugin is installed so storage calls show up as
// spans under the request trace.
package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// kvEntry is the GORM model for one key-value row.
type kvEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(128)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the database table name for kvEntry.
func (kvEntry) TableName() string { return "kv_entries" }

// SQLiteKV is a KV backed by a SQLite database file.
type SQLiteKV struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite database at path, applies
// PRAGMAs suited for a single-process server, installs tracing, and
// migrates the kv_entries table.
func OpenSQLite(path string) (*SQLiteKV, error) {
	// Fail early if the parent directory does not exist; the driver's own
	// error for this case is unhelpful.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db}, nil
}

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

// Set implements KV via an upsert on the primary key.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Save(&kvEntry{Key: key, Value: value}).Error
}

// Delete implements KV.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&kvEntry{}, "key = ?", key).Error
}
