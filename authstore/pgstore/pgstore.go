// Package pgstore persists AuthState snapshots in Postgres, grounded
// on the teacher's pgxpool-backed storage package (spec §6.6's
// "external storage collaborator").
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/authstore"
)

// Store is an authstore.Store backed by a single "auth_snapshots"
// table, keyed by browser device id.
type Store struct {
	pool *pgxpool.Pool
}

// Config holds the Postgres connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// New opens a pool against cfg and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("pgstore: creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Save upserts the snapshot for key, storing it as a single JSONB
// column — the snapshot's shape changes rarely enough that a typed
// schema would only add migration churn.
func (s *Store) Save(ctx context.Context, key string, snap auth.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("pgstore: marshaling snapshot: %w", err)
	}

	query := `
		INSERT INTO auth_snapshots (device_id, snapshot, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (device_id) DO UPDATE SET snapshot = $2, updated_at = NOW()
	`
	if _, err := s.pool.Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("pgstore: saving snapshot for %s: %w", key, err)
	}
	return nil
}

// Load retrieves the snapshot for key, or authstore.ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) (auth.Snapshot, error) {
	query := `SELECT snapshot FROM auth_snapshots WHERE device_id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&data)
	if err == pgx.ErrNoRows {
		return auth.Snapshot{}, authstore.ErrNotFound
	}
	if err != nil {
		return auth.Snapshot{}, fmt.Errorf("pgstore: loading snapshot for %s: %w", key, err)
	}

	var snap auth.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return auth.Snapshot{}, fmt.Errorf("pgstore: unmarshaling snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes key's stored snapshot, if any.
func (s *Store) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM auth_snapshots WHERE device_id = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("pgstore: deleting snapshot for %s: %w", key, err)
	}
	return nil
}
