package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

// Config fichier de la base; ":memory:" pour une base volatile
type Config struct {
	Path string
}

const memoryPath = ":memory:"

const schemaSQL = `CREATE TABLE IF NOT EXISTS kv_collections (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

const (
	selectSQL = `SELECT value FROM kv_collections WHERE key = ?`
	upsertSQL = `INSERT INTO kv_collections (key, value, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteSQL = `DELETE FROM kv_collections WHERE key = ?`
	keysSQL   = `SELECT key FROM kv_collections ORDER BY key`
)

// Store magasin clé-valeur fichier (CLI, développement); Apply s'exécute en transaction
type Store struct {
	conn *sql.DB
	path string
}

var _ kvstore.Store = (*Store)(nil)

// Open ouvre ou crée la base et sa table
func Open(config *Config) (*Store, error) {
	path := config.Path
	if path == "" {
		path = memoryPath
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Une seule connexion: un seul écrivain, et ":memory:" reste partagée
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize kv schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, selectSQL, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lecture %s: %w", key, err)
	}
	return []byte(raw), true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.Apply(ctx, []kvstore.Write{kvstore.Put(key, value)})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Apply(ctx, []kvstore.Write{kvstore.Remove(key)})
}

func (s *Store) Apply(ctx context.Context, writes []kvstore.Write) error {
	if err := kvstore.ValidateWrites(writes); err != nil {
		return err
	}
	writes = kvstore.Compact(writes)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range writes {
		if w.IsDelete() {
			_, err = tx.ExecContext(ctx, deleteSQL, w.Key)
		} else {
			_, err = tx.ExecContext(ctx, upsertSQL, w.Key, string(w.Value))
		}
		if err != nil {
			return fmt.Errorf("écriture %s: %w", w.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Keys clés de collection présentes
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, keysSQL)
	if err != nil {
		return nil, fmt.Errorf("liste des clés: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.conn.Close()
}

// Path chemin de la base
func (s *Store) Path() string {
	return s.path
}
