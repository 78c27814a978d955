package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/graylink/go-m2web/m2web"
)

// Store configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds for the busy timeout pragma.
	msPerSecond = 1000

	// connectionTimeout bounds the connectivity check on open.
	connectionTimeout = 5 * time.Second
)

// Config contains the local inventory database options.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory is created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Store caches the account's device list in a local SQLite database so the
// CLI can answer listings without reaching the API.
//
// The cache is replaced wholesale on every sync; it is a snapshot, not an
// incrementally maintained mirror.
type Store struct {
	db   *sql.DB
	path string
}

// schema creates the device snapshot table. LAN devices and services are
// stored as JSON arrays; the three custom attribute slots get one column
// each since their count is fixed by the API.
const schema = `
CREATE TABLE IF NOT EXISTS devices (
	id            INTEGER PRIMARY KEY,
	name          TEXT NOT NULL,
	encoded_name  TEXT NOT NULL,
	status        TEXT NOT NULL,
	description   TEXT NOT NULL,
	custom_attr_1 TEXT NOT NULL,
	custom_attr_2 TEXT NOT NULL,
	custom_attr_3 TEXT NOT NULL,
	m2web_server  TEXT NOT NULL,
	lan_devices   TEXT NOT NULL,
	services      TEXT NOT NULL,
	synced_at     TIMESTAMP NOT NULL
);`

// Open creates or opens the inventory database at cfg.Path.
//
// It creates the directory if needed, applies the busy-timeout and WAL
// pragmas, verifies connectivity and ensures the schema exists.
func Open(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating inventory directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening inventory database: %w", err)
	}

	// SQLite supports a single writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying inventory database: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("creating inventory schema: %w", err)
	}

	// Owner read/write only; the cache can hold device descriptions.
	_ = os.Chmod(cfg.Path, filePermissions)

	return &Store{db: sqlDB, path: cfg.Path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Replace swaps the cached snapshot for the given device list in one
// transaction. The previous snapshot is discarded entirely.
func (s *Store) Replace(ctx context.Context, devices []m2web.Device) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting inventory transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM devices`); err != nil {
		return fmt.Errorf("clearing inventory: %w", err)
	}

	now := time.Now().UTC()
	const insert = `
		INSERT INTO devices (
			id, name, encoded_name, status, description,
			custom_attr_1, custom_attr_2, custom_attr_3,
			m2web_server, lan_devices, services, synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, dev := range devices {
		lanDevices, err := json.Marshal(dev.LANDevices)
		if err != nil {
			return fmt.Errorf("encoding lan devices for %q: %w", dev.Name, err)
		}
		services, err := json.Marshal(dev.Services)
		if err != nil {
			return fmt.Errorf("encoding services for %q: %w", dev.Name, err)
		}

		if _, err := tx.ExecContext(ctx, insert,
			dev.ID, dev.Name, dev.EncodedName, dev.Status, dev.Description,
			dev.CustomAttributes[0], dev.CustomAttributes[1], dev.CustomAttributes[2],
			dev.M2WebServer, string(lanDevices), string(services), now,
		); err != nil {
			return fmt.Errorf("inserting device %q: %w", dev.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing inventory snapshot: %w", err)
	}
	return nil
}

// Devices returns the cached snapshot ordered by device name.
// An empty cache returns ErrEmpty, mirroring the API's no-content semantics.
func (s *Store) Devices(ctx context.Context) ([]m2web.Device, error) {
	const query = `
		SELECT id, name, encoded_name, status, description,
		       custom_attr_1, custom_attr_2, custom_attr_3,
		       m2web_server, lan_devices, services
		FROM devices
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	var devices []m2web.Device
	for rows.Next() {
		var (
			dev        m2web.Device
			lanDevices string
			services   string
		)
		if err := rows.Scan(
			&dev.ID, &dev.Name, &dev.EncodedName, &dev.Status, &dev.Description,
			&dev.CustomAttributes[0], &dev.CustomAttributes[1], &dev.CustomAttributes[2],
			&dev.M2WebServer, &lanDevices, &services,
		); err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		if err := json.Unmarshal([]byte(lanDevices), &dev.LANDevices); err != nil {
			return nil, fmt.Errorf("decoding lan devices for %q: %w", dev.Name, err)
		}
		if err := json.Unmarshal([]byte(services), &dev.Services); err != nil {
			return nil, fmt.Errorf("decoding services for %q: %w", dev.Name, err)
		}
		devices = append(devices, dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading inventory rows: %w", err)
	}

	if len(devices) == 0 {
		return nil, ErrEmpty
	}
	return devices, nil
}

// LastSync returns the time of the most recent snapshot, or ErrEmpty when
// no snapshot has been stored yet.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	var synced sql.NullTime
	err := s.db.QueryRowContext(ctx, `SELECT MAX(synced_at) FROM devices`).Scan(&synced)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last sync: %w", err)
	}
	if !synced.Valid {
		return time.Time{}, ErrEmpty
	}
	return synced.Time, nil
}
