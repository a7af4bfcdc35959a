// internal/storage/database.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/arteesan-backend/config"
	"github.com/Annany2002/arteesan-backend/internal/core"
)

// SQLiteStore keeps each collection in its own table of JSON documents.
type SQLiteStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// ConnectSQLite opens the SQLite document database described by cfg,
// creating its directory when needed.
func ConnectSQLite(cfg *config.Config, log logrus.FieldLogger) (*SQLiteStore, error) {
	dbPath := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
	log.Infof("Storage: Initializing document database: %s", dbPath)

	// Ensure the data directory exists
	if err := os.MkdirAll(cfg.DatabaseDir, 0750); err != nil {
		log.Errorf("Storage: Error creating data directory '%s': %v", cfg.DatabaseDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		log.Errorf("Storage: Failed to open document db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open document db: %w", err)
	}

	// Verify connection is working
	if err = db.Ping(); err != nil {
		db.Close()
		log.Errorf("Storage: Failed to ping document db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to document db: %w", err)
	}
	log.Info("Storage: Document database connection successful.")

	// SQLite serializes writers; keep one connection.
	db.SetMaxOpenConns(1)

	return NewSQLiteStore(db, log), nil
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB, log logrus.FieldLogger) *SQLiteStore {
	return &SQLiteStore{db: db, log: log.WithField("store", storeSQLite)}
}

// EnsureCollection creates the collection table if it does not exist.
func (s *SQLiteStore) EnsureCollection(ctx context.Context, collection string) error {
	if !core.IsValidIdentifier(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	createSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL
	);`, collection)
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		s.log.Errorf("Storage: Failed to create %s table: %v", collection, err)
		return fmt.Errorf("failed to ensure %s table: %w", collection, err)
	}
	s.log.Debugf("Storage: %s table ensured.", collection)
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
