package store

import (
	"context"
	"encoding/json"
	"errors"
)

// 逻辑集合
const (
	CollectionCandidates = "candidates"
	CollectionInterview  = "interview"
)

var ErrNotFound = errors.New("record not found")

// Record 存储包装 {id, data, timestamp}
type Record struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Store 按 (collection, id) 寻址的键值存储
type Store interface {
	Get(ctx context.Context, collection, id string) (*Record, error)
	Set(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Clear(ctx context.Context, collection string) error
	Ping(ctx context.Context) error
}

// GetJSON 读取记录并把内容解码到 v
func GetJSON(ctx context.Context, s Store, collection, id string, v interface{}) error {
	rec, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	return json.Unmarshal(rec.Data, v)
}

func SetJSON(ctx context.Context, s Store, collection, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, collection, id, data)
}

// ClearAll 清空所有已知集合
func ClearAll(ctx context.Context, s Store) error {
	for _, c := range []string{CollectionCandidates, CollectionInterview} {
		if err := s.Clear(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
