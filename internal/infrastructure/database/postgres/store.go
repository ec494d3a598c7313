package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

// TableName table portant le magasin clé-valeur
const TableName = "kv_collections"

const schemaSQL = `CREATE TABLE IF NOT EXISTS kv_collections (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	selectSQL = `SELECT value::text FROM kv_collections WHERE key = $1`
	upsertSQL = `INSERT INTO kv_collections (key, value, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteSQL = `DELETE FROM kv_collections WHERE key = $1`
	keysSQL   = `SELECT key FROM kv_collections ORDER BY key`
)

// Store magasin clé-valeur sur PostgreSQL (colonne jsonb); Apply s'exécute en transaction
type Store struct {
	client *Client
	txm    *TransactionManager
}

var _ kvstore.Store = (*Store)(nil)

func NewStore(client *Client, txm *TransactionManager) *Store {
	return &Store{client: client, txm: txm}
}

// EnsureSchema crée la table si nécessaire
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.client.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("création table %s: %w", TableName, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw string
	err := s.client.QueryRow(ctx, selectSQL, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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
	return s.txm.WithTransaction(ctx, func(tx *Transaction) error {
		for _, w := range writes {
			var err error
			if w.IsDelete() {
				err = tx.Exec(ctx, deleteSQL, w.Key)
			} else {
				err = tx.Exec(ctx, upsertSQL, w.Key, string(w.Value))
			}
			if err != nil {
				return fmt.Errorf("écriture %s: %w", w.Key, err)
			}
		}
		return nil
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

// Keys clés de collection présentes
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.client.Pool().Query(ctx, keysSQL)
	if err != nil {
		return nil, fmt.Errorf("liste des clés: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) Close(ctx context.Context) error {
	s.client.Close()
	return nil
}

// Open connecte PostgreSQL, crée la table et renvoie le magasin
func Open(ctx context.Context, config *DatabaseConfig, logger *zap.Logger) (*Store, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	store := NewStore(client, NewTransactionManager(client, logger))
	if err := store.EnsureSchema(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return store, nil
}
