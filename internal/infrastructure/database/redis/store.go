package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

// Store magasin clé-valeur sur Redis; Apply passe par MULTI/EXEC
type Store struct {
	client *Client
}

var _ kvstore.Store = (*Store)(nil)

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	full, err := s.client.keyGenerator.GenerateKey(key)
	if err != nil {
		return nil, false, err
	}
	v, err := s.client.rdb.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lecture %s: %w", key, err)
	}
	return v, true, nil
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
	keys := make([]string, len(writes))
	for i, w := range writes {
		full, err := s.client.keyGenerator.GenerateKey(w.Key)
		if err != nil {
			return err
		}
		keys[i] = full
	}
	_, err := s.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, w := range writes {
			if w.IsDelete() {
				pipe.Del(ctx, keys[i])
				continue
			}
			pipe.Set(ctx, keys[i], w.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("écriture groupée redis: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

// Keys clés de collection présentes (SCAN sur le préfixe de l'instance)
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := s.client.rdb.Scan(ctx, 0, s.client.keyGenerator.GenerateWildcardPattern(), 100).Iterator()
	for iter.Next(ctx) {
		if k, ok := s.client.keyGenerator.CollectionKey(iter.Val()); ok {
			out = append(out, k)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan redis: %w", err)
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	s.client.Close()
	return nil
}

// Open connecte Redis et renvoie le magasin
func Open(config *RedisConfig) (*Store, error) {
	client, err := NewClient(config, NewRedisKeyGenerator(config.Namespace))
	if err != nil {
		return nil, err
	}
	return NewStore(client), nil
}
