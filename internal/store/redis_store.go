package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore 每个集合一个 hash：kv:<collection> -> id -> 记录 JSON
type RedisStore struct {
	Redis  *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Redis: rdb, prefix: "kv:", now: time.Now}
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	raw, err := s.Redis.HGet(ctx, s.key(collection), id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, data []byte) error {
	raw, err := json.Marshal(Record{ID: id, Data: data, Timestamp: s.now().UnixMilli()})
	if err != nil {
		return err
	}
	return s.Redis.HSet(ctx, s.key(collection), id, raw).Err()
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	return s.Redis.HDel(ctx, s.key(collection), id).Err()
}

func (s *RedisStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	all, err := s.Redis.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(all))
	for _, raw := range all {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, collection string) error {
	return s.Redis.Del(ctx, s.key(collection)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Redis.Ping(ctx).Err()
}
