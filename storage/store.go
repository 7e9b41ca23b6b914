// Package storage persists the supervisor's local state: the identifier
// of the single managed VPN connection, and the profile document written
// out for the import boundary.
package storage

import (
	"database/sql"
	"errors"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/yllada/vpn-supervisor/common"
)

// uuidKey is the state table key under which the managed connection
// identifier is stored. At most one row with this key exists.
const uuidKey = "connection-uuid"

// Store persists the UUID of the managed VPN connection in a small SQLite
// database. It implements common.UUIDStore.
type Store struct {
	db *sql.DB
}

// Open opens the state database at path, creating it if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "failed to open state store")
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the state database in the application data directory.
func OpenDefault() (*Store, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dataDir, common.StateDBFileName))
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return common.WrapError(err, "failed to initialize state store")
	}
	return nil
}

// UUID returns the persisted managed connection UUID. The boolean reports
// whether a UUID has ever been stored.
func (s *Store) UUID() (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, uuidKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.WrapError(err, common.ErrStateStorage.Error())
	}
	return value, true, nil
}

// SetUUID stores uuid as the managed connection identifier, replacing any
// previous value.
func (s *Store) SetUUID(uuid string) error {
	_, err := s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		uuidKey, uuid)
	if err != nil {
		return common.WrapError(err, common.ErrStateStorage.Error())
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
