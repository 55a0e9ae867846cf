package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"interview_backend/internal/model"
	"interview_backend/internal/repository"
	"interview_backend/internal/session"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"
	"interview_backend/pkg/monitoring"
	"interview_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// completion 找不到候选人时，回溯查找的时间窗口
const recoveryWindow = 24 * time.Hour

var errStaleSync = errors.New("stale candidate sync")

// CandidateSyncService 把会话 effect 写入候选人目录
type CandidateSyncService struct {
	Repo    *repository.CandidateRepository
	Gateway Gateway
	// AISummary 为 true 时，完成同步后向网关请求总结并覆盖模板总结
	AISummary bool

	now   func() time.Time
	locks keyedMutex
}

func NewCandidateSyncService(repo *repository.CandidateRepository, gateway Gateway, aiSummary bool) *CandidateSyncService {
	return &CandidateSyncService{
		Repo:      repo,
		Gateway:   gateway,
		AISummary: aiSummary,
		now:       time.Now,
	}
}

// Apply 执行一个 effect，revision 不新于候选人已存储版本的写入会被丢弃
func (s *CandidateSyncService) Apply(ctx context.Context, eff session.Effect) error {
	ctx, span := tracing.StartSpan(ctx, "candidate.sync",
		attribute.String("kind", string(eff.Kind)),
		attribute.String("candidateId", eff.CandidateID),
		attribute.Int64("revision", eff.Revision))

	var err error
	switch eff.Kind {
	case session.EffectCreateCandidate:
		err = s.create(ctx, eff)
	case session.EffectPauseCandidate:
		err = s.update(ctx, eff.CandidateID, eff.Revision, func(c *model.Candidate) {
			c.InterviewStatus = model.StatusPaused
			c.PauseTime = util.FormatISO(eff.At)
		})
	case session.EffectResumeCandidate:
		err = s.update(ctx, eff.CandidateID, eff.Revision, func(c *model.Candidate) {
			c.InterviewStatus = model.StatusInProgress
			c.ResumeTime = util.FormatISO(eff.At)
		})
	case session.EffectSyncProgress:
		err = s.update(ctx, eff.CandidateID, eff.Revision, func(c *model.Candidate) {
			c.ChatHistory = eff.ChatHistory
			c.CurrentQuestionIndex = eff.QuestionIndex
			c.InterviewAnswers = eff.Answers
			c.LastActivityTime = util.FormatISO(eff.At)
		})
	case session.EffectCompleteCandidate:
		err = s.complete(ctx, eff)
	default:
		err = errors.New("unknown effect kind " + string(eff.Kind))
	}

	switch {
	case errors.Is(err, errStaleSync):
		monitoring.CandidateSyncs.WithLabelValues(string(eff.Kind), "stale").Inc()
		logger.Log.Debug("Dropped stale candidate sync",
			zap.String("kind", string(eff.Kind)),
			zap.String("candidateId", eff.CandidateID),
			zap.Int64("revision", eff.Revision))
		err = nil
	case err != nil:
		monitoring.CandidateSyncs.WithLabelValues(string(eff.Kind), "error").Inc()
		logger.Log.Error("Candidate sync failed",
			zap.String("kind", string(eff.Kind)),
			zap.String("candidateId", eff.CandidateID),
			zap.Error(err))
	default:
		monitoring.CandidateSyncs.WithLabelValues(string(eff.Kind), "ok").Inc()
	}
	tracing.EndSpan(span, err)
	return err
}

func (s *CandidateSyncService) create(ctx context.Context, eff session.Effect) error {
	if eff.Info == nil {
		return errors.New("create candidate without contact info")
	}
	unlock := s.locks.Lock(eff.CandidateID)
	defer unlock()

	existing, err := s.Repo.FindByID(ctx, eff.CandidateID)
	if err == nil {
		if eff.Revision <= existing.SyncRevision {
			return errStaleSync
		}
	} else if !errors.Is(err, util.ErrCandidateNotFound) {
		return err
	}

	c := &model.Candidate{
		ID:               eff.CandidateID,
		Name:             eff.Info.Name,
		Email:            eff.Info.Email,
		Phone:            eff.Info.Phone,
		ResumeText:       eff.Info.ResumeText,
		ResumeURL:        eff.Info.ResumeURL,
		InterviewStatus:  model.StatusInProgress,
		StartTime:        util.FormatISO(eff.At),
		LastActivityTime: util.FormatISO(eff.At),
		ChatHistory:      []model.ChatMessage{},
		InterviewAnswers: []model.InterviewAnswer{},
		SyncRevision:     eff.Revision,
	}
	if existing != nil && c.ResumeURL == "" {
		c.ResumeURL = existing.ResumeURL
	}
	return s.Repo.Save(ctx, c)
}

func (s *CandidateSyncService) update(ctx context.Context, id string, revision int64, mutate func(*model.Candidate)) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if revision <= c.SyncRevision {
		return errStaleSync
	}
	mutate(c)
	c.SyncRevision = revision
	return s.Repo.Save(ctx, c)
}

func (s *CandidateSyncService) complete(ctx context.Context, eff session.Effect) error {
	id := eff.CandidateID
	if _, err := s.Repo.FindByID(ctx, id); errors.Is(err, util.ErrCandidateNotFound) {
		recovered, rerr := s.recentInProgress(ctx)
		if rerr != nil {
			return rerr
		}
		if recovered == "" {
			logger.Log.Warn("No candidate record to complete",
				zap.String("candidateId", id))
			return nil
		}
		logger.Log.Warn("Completing recovered candidate record",
			zap.String("candidateId", id),
			zap.String("recoveredId", recovered))
		id = recovered
	} else if err != nil {
		return err
	}

	err := s.update(ctx, id, eff.Revision, func(c *model.Candidate) {
		score := eff.FinalScore
		c.InterviewStatus = model.StatusCompleted
		c.FinalScore = &score
		c.Summary = eff.Summary
		c.ChatHistory = eff.ChatHistory
		c.InterviewAnswers = eff.Answers
		c.CurrentQuestionIndex = eff.QuestionIndex
		c.EndTime = util.FormatISO(eff.At)
		c.LastActivityTime = util.FormatISO(eff.At)
	})
	if err != nil || !s.AISummary || s.Gateway == nil {
		return err
	}
	s.summarize(ctx, id, eff)
	return nil
}

// summarize 用网关生成的总结替换模板总结，失败时保留模板
func (s *CandidateSyncService) summarize(ctx context.Context, id string, eff session.Effect) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return
	}
	req := SummaryRequest{Name: c.Name, Email: c.Email, FinalScore: c.FinalScore}
	for _, a := range eff.Answers {
		req.Answers = append(req.Answers, SummaryAnswer{Answer: a.Answer, Score: a.Score})
	}
	for _, q := range eff.Questions {
		req.Questions = append(req.Questions, SummaryQuestion{Text: q.Text})
	}

	summary, ok := s.Gateway.GenerateSummary(ctx, req)
	if !ok {
		return
	}

	unlock := s.locks.Lock(id)
	defer unlock()
	c, err = s.Repo.FindByID(ctx, id)
	if err != nil || c.SyncRevision != eff.Revision {
		return
	}
	c.Summary = summary
	if err := s.Repo.Save(ctx, c); err != nil {
		logger.Log.Warn("Failed to store AI summary",
			zap.String("candidateId", id),
			zap.Error(err))
	}
}

// recentInProgress 返回 24 小时内最近开始的进行中候选人 ID
func (s *CandidateSyncService) recentInProgress(ctx context.Context) (string, error) {
	all, err := s.Repo.FindAll(ctx)
	if err != nil {
		return "", err
	}
	cutoff := s.now().Add(-recoveryWindow)

	var matches []model.Candidate
	for _, c := range all {
		if c.InterviewStatus != model.StatusInProgress {
			continue
		}
		start, ok := util.ParseISO(c.StartTime)
		if !ok || start.Before(cutoff) {
			continue
		}
		matches = append(matches, c)
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, _ := util.ParseISO(matches[i].StartTime)
		b, _ := util.ParseISO(matches[j].StartTime)
		return a.After(b)
	})
	return matches[0].ID, nil
}

// keyedMutex 按候选人 ID 串行化读改写；无人持有时回收条目
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
