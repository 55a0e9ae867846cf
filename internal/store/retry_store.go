package store

import (
	"context"
	"time"

	"interview_backend/pkg/logger"

	"go.uber.org/zap"
)

// RetryStore 写入失败时按线性退避重试，用尽后把错误返回给调用方
type RetryStore struct {
	Store
	maxRetries int
	backoff    time.Duration
	sleep      func(context.Context, time.Duration) error
}

func NewRetryStore(inner Store, maxRetries int, backoff time.Duration) *RetryStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryStore{
		Store:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
		sleep:      sleepCtx,
	}
}

func (s *RetryStore) Set(ctx context.Context, collection, id string, data []byte) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err = s.Store.Set(ctx, collection, id, data); err == nil {
			return nil
		}
		if attempt == s.maxRetries {
			break
		}
		logger.Log.Warn("Retrying store write",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", s.maxRetries),
			zap.Error(err))
		if serr := s.sleep(ctx, s.backoff*time.Duration(attempt)); serr != nil {
			return serr
		}
	}
	logger.Log.Error("Store write failed after retries",
		zap.String("collection", collection),
		zap.String("id", id),
		zap.Int("maxRetries", s.maxRetries),
		zap.Error(err))
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
