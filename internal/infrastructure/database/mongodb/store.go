package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Mouncef/admin-catalog-insurance-sub000/internal/infrastructure/database/kvstore"
)

// CollectionName collection MongoDB portant le magasin clé-valeur
const CollectionName = "kv_collections"

// kvDocument une collection métier sérialisée en JSON
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store magasin clé-valeur sur MongoDB; Apply est un BulkWrite ordonné
type Store struct {
	client *Client
	coll   *mongo.Collection
	now    func() time.Time
}

var _ kvstore.Store = (*Store)(nil)

func NewStore(client *Client) *Store {
	return &Store{client: client, coll: client.Collection(CollectionName), now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lecture %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
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
	if len(writes) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(writes))
	now := s.now().UTC()
	for _, w := range writes {
		if w.IsDelete() {
			models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": w.Key}))
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": w.Key}).
			SetReplacement(kvDocument{Key: w.Key, Value: string(w.Value), UpdatedAt: now}).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("écriture groupée mongodb: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Keys clés de collection présentes
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("liste des clés: %w", err)
	}
	defer cur.Close(ctx)
	var out []string
	for cur.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.Key)
	}
	return out, cur.Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// Open connecte MongoDB et renvoie le magasin
func Open(config *MongoConfig) (*Store, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	return NewStore(client), nil
}
