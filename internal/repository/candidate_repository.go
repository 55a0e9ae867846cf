package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"interview_backend/internal/model"
	"interview_backend/internal/store"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"go.uber.org/zap"
)

// CandidateRepository 处理候选人记录的数据访问

type CandidateRepository struct {
	Store store.Store
}

func NewCandidateRepository(s store.Store) *CandidateRepository {
	return &CandidateRepository{Store: s}
}

// Save 创建或覆盖候选人记录
func (r *CandidateRepository) Save(ctx context.Context, c *model.Candidate) error {
	return store.SetJSON(ctx, r.Store, store.CollectionCandidates, c.ID, c)
}

// FindByID 根据ID查找候选人
func (r *CandidateRepository) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	var c model.Candidate
	err := store.GetJSON(ctx, r.Store, store.CollectionCandidates, id, &c)
	if errors.Is(err, store.ErrNotFound) {
		return nil, util.ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAll 返回全部有效的候选人记录（缺少 id/姓名/邮箱的记录被跳过）
func (r *CandidateRepository) FindAll(ctx context.Context) ([]model.Candidate, error) {
	records, err := r.Store.GetAll(ctx, store.CollectionCandidates)
	if err != nil {
		return nil, err
	}
	out := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		var c model.Candidate
		if err := json.Unmarshal(rec.Data, &c); err != nil {
			logger.Log.Warn("Skipping undecodable candidate record", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		if !c.Valid() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FindByEmail 按邮箱查找第一个匹配的候选人
func (r *CandidateRepository) FindByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Email == email {
			return &all[i], nil
		}
	}
	return nil, util.ErrCandidateNotFound
}

// Delete 删除候选人
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Store.Get(ctx, store.CollectionCandidates, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return util.ErrCandidateNotFound
		}
		return err
	}
	return r.Store.Delete(ctx, store.CollectionCandidates, id)
}

// CleanupDuplicates 同一邮箱只保留 startTime 最新的一条，返回删除的 id
func (r *CandidateRepository) CleanupDuplicates(ctx context.Context) ([]string, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string][]model.Candidate)
	var order []string
	for _, c := range all {
		if _, ok := byEmail[c.Email]; !ok {
			order = append(order, c.Email)
		}
		byEmail[c.Email] = append(byEmail[c.Email], c)
	}

	var removed []string
	for _, email := range order {
		group := byEmail[email]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return startMillis(group[i]) > startMillis(group[j])
		})
		for _, c := range group[1:] {
			if err := r.Store.Delete(ctx, store.CollectionCandidates, c.ID); err != nil {
				return removed, err
			}
			removed = append(removed, c.ID)
		}
	}
	return removed, nil
}

// Clear 清空候选人集合
func (r *CandidateRepository) Clear(ctx context.Context) error {
	return r.Store.Clear(ctx, store.CollectionCandidates)
}

func startMillis(c model.Candidate) int64 {
	t, ok := util.ParseISO(c.StartTime)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
