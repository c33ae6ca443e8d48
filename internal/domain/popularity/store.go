// internal/domain/popularity/store.go
package popularity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/infrastructure/storage"
)

// Store persists the order-count index: product id -> units ordered
type Store interface {
	Add(ctx context.Context, deltas map[string]int64) error
	All(ctx context.Context) (map[string]int64, error)
}

// RedisStore keeps the index in a Redis hash
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a store on the given hash key, e.g. "mesa:contagem"
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// Add increments every counter atomically
func (s *RedisStore) Add(ctx context.Context, deltas map[string]int64) error {
	if len(deltas) == 0 {
		return nil
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, n := range deltas {
			pipe.HIncrBy(ctx, s.key, id, n)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment order counts: %w", err)
	}
	return nil
}

// All returns the whole index. Fields that are not integers are skipped.
func (s *RedisStore) All(ctx context.Context) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read order counts: %w", err)
	}
	counts := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counts[id] = n
	}
	return counts, nil
}

// KVStore keeps the index as one JSON document in a key-value store
type KVStore struct {
	kv  storage.KV
	log logrus.FieldLogger
	mu  sync.Mutex
}

// NewKVStore creates a store on storage.KeyCounts of kv
func NewKVStore(kv storage.KV, log logrus.FieldLogger) *KVStore {
	return &KVStore{kv: kv, log: log}
}

// Add read-modify-writes the document
func (s *KVStore) Add(ctx context.Context, deltas map[string]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for id, n := range deltas {
		counts[id] += n
	}
	return storage.SetJSON(ctx, s.kv, storage.KeyCounts, counts)
}

// All returns the whole index
func (s *KVStore) All(ctx context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load treats a malformed document as an empty index
func (s *KVStore) load(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	err := storage.GetJSON(ctx, s.kv, storage.KeyCounts, &counts)
	switch {
	case err == nil:
		if counts == nil {
			// "null" decodes without error
			counts = map[string]int64{}
		}
		return counts, nil
	case errors.Is(err, storage.ErrNotFound):
		return map[string]int64{}, nil
	case storage.IsParseError(err):
		s.log.WithError(err).Warn("Discarding unreadable order counts")
		return map[string]int64{}, nil
	default:
		return nil, fmt.Errorf("failed to read order counts: %w", err)
	}
}
