package repository

import (
	"context"
	"errors"

	"interview_backend/internal/session"
	"interview_backend/internal/store"
)

// SessionRepository 持久化唯一的面试会话快照

type SessionRepository struct {
	Store store.Store
	Key   string
}

func NewSessionRepository(s store.Store, key string) *SessionRepository {
	if key == "" {
		key = "current"
	}
	return &SessionRepository{Store: s, Key: key}
}

// Load 读取并迁移快照；不存在时返回 nil
func (r *SessionRepository) Load(ctx context.Context) (*session.Snapshot, error) {
	rec, err := r.Store.Get(ctx, store.CollectionInterview, r.Key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := session.Migrate(rec.Data)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save 写入快照
func (r *SessionRepository) Save(ctx context.Context, snap session.Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	return r.Store.Set(ctx, store.CollectionInterview, r.Key, data)
}

// Delete 删除快照
func (r *SessionRepository) Delete(ctx context.Context) error {
	return r.Store.Delete(ctx, store.CollectionInterview, r.Key)
}
