package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"interview_backend/internal/model"
	"interview_backend/internal/repository"
	"interview_backend/internal/session"
	"interview_backend/internal/timer"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"
	"interview_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	effectQueueSize = 256
	effectTimeout   = 30 * time.Second
	persistTimeout  = 10 * time.Second
)

var (
	ErrServiceClosed = errors.New("interview service closed")
	ErrUnknownModal  = errors.New("unknown modal")
)

// 可由客户端切换的提示框
const (
	ModalWelcomeBack = "welcome_back"
	ModalPause       = "pause"
)

type InterviewOptions struct {
	// TickInterval 倒计时每跳代表一秒
	TickInterval time.Duration
	SyncInterval time.Duration
	NewTicker    timer.TickerFactory
}

// InterviewView 返回给候选人客户端的会话视图
type InterviewView struct {
	session.State
	Phase           session.Phase            `json:"phase"`
	CurrentQuestion *model.InterviewQuestion `json:"currentQuestion,omitempty"`
	DifficultyTier  util.Tier                `json:"difficultyTier,omitempty"`
	TimeTier        util.Tier                `json:"timeTier,omitempty"`
	TimeDisplay     string                   `json:"timeDisplay,omitempty"`
	AnsweredCount   int                      `json:"answeredCount"`
	QuestionCount   int                      `json:"questionCount"`
}

type expiryKey struct {
	epoch int64
	index int
}

// InterviewService 持有唯一的在线会话。状态转换在同一把锁下执行；
// 候选人写入由后台 worker 按序执行，快照由另一个 worker 持久化，总是写最新状态
type InterviewService struct {
	machine  *session.Machine
	gateway  Gateway
	sessions *repository.SessionRepository
	sync     *CandidateSyncService
	opts     InterviewOptions

	mu       sync.Mutex
	state    session.State
	revision int64
	epoch    int64
	dirty    bool
	closed   bool
	loaded   bool

	countdown      *timer.Timer
	countdownGen   uint64
	countdownBase  int
	countdownIndex int
	expired        expiryKey
	progress       *timer.Timer

	effects chan session.Effect

	persistMu     sync.Mutex
	pendingMu     sync.Mutex
	pending       *session.Snapshot
	persistSignal chan struct{}

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewInterviewService(
	machine *session.Machine,
	gateway Gateway,
	sessions *repository.SessionRepository,
	syncer *CandidateSyncService,
	opts InterviewOptions,
) *InterviewService {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 5 * time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = timer.NewRealTicker
	}

	s := &InterviewService{
		machine:        machine,
		gateway:        gateway,
		sessions:       sessions,
		sync:           syncer,
		opts:           opts,
		state:          session.Initial(),
		countdownIndex: -1,
		expired:        expiryKey{index: -1},
		effects:        make(chan session.Effect, effectQueueSize),
		persistSignal:  make(chan struct{}, 1),
		stop:           make(chan struct{}),
	}
	s.progress = timer.New(timer.Options{
		Interval:  opts.SyncInterval,
		NewTicker: opts.NewTicker,
		OnTick:    func(int) { s.onProgressTick() },
	})

	s.wg.Add(2)
	go s.runEffects()
	go s.runPersist()
	return s
}

// Load 恢复持久化的会话并整理，只有第一次调用生效；快照缺失或无法读取时保持初始状态。
// 候选人记录可能比快照更新（进程在写入候选人后、保存快照前退出），
// 所以 revision 从两者中较大的值继续
func (s *InterviewService) Load(ctx context.Context) error {
	var snap *session.Snapshot
	var loadErr error
	if s.sessions != nil {
		snap, loadErr = s.sessions.Load(ctx)
		if loadErr != nil {
			logger.Log.Error("Failed to load interview session, starting empty", zap.Error(loadErr))
		}
	}
	if snap != nil {
		snap.Revision = s.seedRevision(ctx, *snap)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	s.loaded = true

	if snap != nil {
		s.state = snap.State
		s.revision = snap.Revision
		s.epoch = snap.Epoch
	}
	next, effects := s.machine.Rehydrate(s.state)
	s.commitLocked(next, effects, "rehydrate")
	logger.Log.Info("Interview session loaded",
		zap.String("phase", string(s.state.Phase())),
		zap.Int("questions", len(s.state.Questions)),
		zap.Int("answers", len(s.state.Answers)))
	return loadErr
}

func (s *InterviewService) View() InterviewView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Begin 用简历字段开始收集候选人信息，没有缺失时直接开始面试
func (s *InterviewService) Begin(ctx context.Context, data model.ResumeData) (InterviewView, error) {
	return s.collect(ctx, "begin", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.BeginInfoCollection(st, data)
	})
}

// ProvideInfo 回答当前的信息询问
func (s *InterviewService) ProvideInfo(ctx context.Context, value string) (InterviewView, error) {
	return s.collect(ctx, "info", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.ProvideInfo(st, value)
	})
}

func (s *InterviewService) collect(ctx context.Context, name string, tr func(session.State) (session.State, []session.Effect, error)) (InterviewView, error) {
	s.mu.Lock()
	if err := s.applyLocked(name, tr); err != nil {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, err
	}
	ready := session.ReadyToStart(s.state)
	epoch := s.epoch
	s.mu.Unlock()

	if ready {
		return s.start(ctx, epoch)
	}
	return s.View(), nil
}

// start 在锁外获取题目，期间发生的重置优先
func (s *InterviewService) start(ctx context.Context, epoch int64) (InterviewView, error) {
	questions := s.gateway.GenerateQuestions(context.WithoutCancel(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || !session.ReadyToStart(s.state) {
		return s.viewLocked(), nil
	}
	err := s.applyLocked("start", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.Start(st, questions)
	})
	if err == nil {
		s.bumpEpochLocked()
	}
	return s.viewLocked(), err
}

// Answer 为当前题目的答案评分并记录。评分在锁外进行，期间会话已经前进时丢弃结果并返回
// session.ErrStaleAnswer。评分不随请求取消：客户端断开后网关返回的兜底分不能顶替真实评分，
// 超时由网关的 http.Client 控制。评分返回时会话已暂停，答案照常记录，下一题在继续后才开始计时
func (s *InterviewService) Answer(ctx context.Context, text string) (InterviewView, error) {
	text = util.SanitizeAnswer(text)
	if text == "" {
		return s.View(), util.ErrEmptyAnswer
	}

	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, err
	}
	st := s.state
	switch st.Phase() {
	case session.PhaseCompleted:
		s.mu.Unlock()
		return s.View(), session.ErrInterviewCompleted
	case session.PhaseActive:
	default:
		v := s.viewLocked()
		s.mu.Unlock()
		return v, session.ErrNotActive
	}
	q := *st.CurrentQuestion()
	epoch, index := s.epoch, st.CurrentQuestionIndex
	spent := q.TimeLimit
	if st.TimeRemaining != nil {
		spent = q.TimeLimit - *st.TimeRemaining
	}
	s.applyLocked("chat", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.AddChatMessage(st, model.ChatMessage{
			ID:         fmt.Sprintf("answer-%s", q.ID),
			Type:       model.MessageUser,
			Content:    text,
			QuestionID: q.ID,
		})
	})
	s.mu.Unlock()

	res := s.gateway.ScoreAnswer(context.WithoutCancel(ctx), q, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.CurrentQuestion()
	if s.epoch != epoch || s.state.CurrentQuestionIndex != index || cur == nil || cur.ID != q.ID {
		logger.Log.Info("Discarding score for a question that is no longer current",
			zap.String("questionId", q.ID))
		return s.viewLocked(), session.ErrStaleAnswer
	}
	switch s.state.Phase() {
	case session.PhaseActive:
	case session.PhasePaused:
		logger.Log.Info("Score arrived while paused, next question waits for resume",
			zap.String("questionId", q.ID))
	default:
		return s.viewLocked(), session.ErrStaleAnswer
	}

	answer := model.InterviewAnswer{
		QuestionID:          q.ID,
		Answer:              text,
		Score:               res.Score,
		Feedback:            res.Feedback,
		TimeSpent:           spent,
		AreasForImprovement: res.AreasForImprovement,
		Strengths:           res.Strengths,
		Suggestions:         res.Suggestions,
	}
	if res.DetailedScores != nil {
		ds := *res.DetailedScores
		answer.DetailedScores = &ds
	}
	err := s.applyLocked("submit", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.SubmitAnswer(st, answer)
	})
	return s.viewLocked(), err
}

func (s *InterviewService) Pause() (InterviewView, error) {
	return s.transition("pause", s.machine.Pause)
}

// Resume 扣除离开期间的时间，剩余时间耗尽的题目立即超时
func (s *InterviewService) Resume() (InterviewView, error) {
	return s.transition("resume", s.machine.Resume)
}

func (s *InterviewService) ConfirmPause() (InterviewView, error) {
	return s.transition("confirm_pause", s.machine.ConfirmPause)
}

// Complete 提前结束面试并记为完成
func (s *InterviewService) Complete() (InterviewView, error) {
	return s.transition("complete", s.machine.Complete)
}

// End 结束面试但不写入完成结果，候选人记录保持原状态
func (s *InterviewService) End() (InterviewView, error) {
	return s.transition("end", s.machine.End)
}

// Touch 刷新进行中会话的活动时间
func (s *InterviewService) Touch() (InterviewView, error) {
	return s.transition("activity", s.machine.UpdateLastActivity)
}

func (s *InterviewService) ClearChat() (InterviewView, error) {
	return s.transition("clear_chat", s.machine.ClearChatHistory)
}

// SetModal 显示或隐藏提示框，两个提示框互斥且进行中不能显示
func (s *InterviewService) SetModal(name string, show bool) (InterviewView, error) {
	var tr func(session.State) (session.State, []session.Effect, error)
	switch name {
	case ModalWelcomeBack:
		tr = func(st session.State) (session.State, []session.Effect, error) {
			return s.machine.SetShowWelcomeBackModal(st, show)
		}
	case ModalPause:
		tr = func(st session.State) (session.State, []session.Effect, error) {
			return s.machine.SetShowPauseModal(st, show)
		}
	default:
		return s.View(), ErrUnknownModal
	}
	return s.transition("modal_"+name, tr)
}

// Reset 回到空会话，旧会话迟到的结果会被丢弃
func (s *InterviewService) Reset() (InterviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.applyLocked("reset", s.machine.Reset)
	if err == nil {
		s.bumpEpochLocked()
	}
	return s.viewLocked(), err
}

// Wipe 重置会话，并在暂停持久化的情况下执行 clear，旧会话的快照不会在清空后落地
func (s *InterviewService) Wipe(ctx context.Context, clear func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyLocked("reset", s.machine.Reset); err != nil {
		return err
	}
	s.epoch++

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.pendingMu.Lock()
	s.pending = nil
	s.pendingMu.Unlock()
	return clear(ctx)
}

// SetSyncInterval 修改进度同步周期，下次启动计时器时生效
func (s *InterviewService) SetSyncInterval(d time.Duration) {
	s.progress.SetInterval(d)
}

// Close 停止计时器，执行完队列中的候选人写入并持久化最终状态
func (s *InterviewService) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.stopCountdownLocked()
		s.progress.Pause()
		s.mu.Unlock()

		close(s.stop)
		s.wg.Wait()
	})
}

func (s *InterviewService) transition(name string, tr func(session.State) (session.State, []session.Effect, error)) (InterviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.applyLocked(name, tr)
	return s.viewLocked(), err
}

func (s *InterviewService) checkOpenLocked() error {
	if s.closed {
		return ErrServiceClosed
	}
	return nil
}

func (s *InterviewService) applyLocked(name string, tr func(session.State) (session.State, []session.Effect, error)) error {
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	next, effects, err := tr(s.state)
	if err != nil {
		return err
	}
	s.commitLocked(next, effects, name)
	return nil
}

// commitLocked 安装新状态，为 effect 编号并入队，再按新阶段调整计时器
func (s *InterviewService) commitLocked(next session.State, effects []session.Effect, name string) {
	s.state = next
	s.revision++
	s.dirty = true
	for _, eff := range effects {
		s.revision++
		eff.Revision = s.revision
		s.enqueueLocked(eff)
	}
	monitoring.SessionTransitions.WithLabelValues(name).Inc()
	s.schedulePersistLocked()
	s.syncTimersLocked()
	s.checkExpiryLocked()
}

// bumpEpochLocked 使上一个会话进行中的评分请求失效
func (s *InterviewService) bumpEpochLocked() {
	s.epoch++
	s.schedulePersistLocked()
}

func (s *InterviewService) enqueueLocked(eff session.Effect) {
	if s.sync == nil || s.closed {
		return
	}
	// worker 从不获取 s.mu，队列满时阻塞等待即可
	s.effects <- eff
}

func (s *InterviewService) syncTimersLocked() {
	if s.closed {
		return
	}
	if s.state.Phase() != session.PhaseActive {
		s.stopCountdownLocked()
		s.progress.Pause()
		return
	}
	s.progress.Start()
	if s.countdown == nil || s.countdownIndex != s.state.CurrentQuestionIndex {
		s.startCountdownLocked()
	}
}

func (s *InterviewService) startCountdownLocked() {
	s.stopCountdownLocked()
	s.countdownGen++
	gen := s.countdownGen
	s.countdownIndex = s.state.CurrentQuestionIndex
	s.countdownBase = 0
	if s.state.TimeRemaining != nil {
		s.countdownBase = *s.state.TimeRemaining
	}
	s.countdown = timer.New(timer.Options{
		Interval:  s.opts.TickInterval,
		NewTicker: s.opts.NewTicker,
		OnTick:    func(elapsed int) { s.onCountdownTick(gen, elapsed) },
	})
	s.countdown.Start()
}

func (s *InterviewService) stopCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Pause()
		s.countdown = nil
	}
	s.countdownIndex = -1
}

func (s *InterviewService) onCountdownTick(gen uint64, elapsed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.countdownGen || s.state.Phase() != session.PhaseActive {
		return
	}
	remaining := s.countdownBase - elapsed
	next, _, _ := s.machine.UpdateTimeRemaining(s.state, remaining)
	s.state = next
	s.schedulePersistLocked()
	s.checkExpiryLocked()
}

// checkExpiryLocked 倒计时耗尽时提交超时答案，每题只提交一次
func (s *InterviewService) checkExpiryLocked() {
	st := s.state
	if st.Phase() != session.PhaseActive || st.TimeRemaining == nil || *st.TimeRemaining > 0 {
		return
	}
	key := expiryKey{epoch: s.epoch, index: st.CurrentQuestionIndex}
	if s.expired == key {
		return
	}
	q := st.CurrentQuestion()
	if q == nil {
		return
	}
	s.expired = key
	logger.Log.Info("Question time expired", zap.String("questionId", q.ID))
	if err := s.applyLocked("expire", func(st session.State) (session.State, []session.Effect, error) {
		return s.machine.SubmitAnswer(st, session.ExpiredAnswer(*q, s.machine.Now()))
	}); err != nil {
		logger.Log.Error("Failed to record expired answer", zap.String("questionId", q.ID), zap.Error(err))
	}
}

// onProgressTick 仅在上次同步后有变化时写入进度
func (s *InterviewService) onProgressTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.dirty || s.state.Phase() != session.PhaseActive {
		return
	}
	next, effects, _ := s.machine.SyncProgress(s.state)
	if len(effects) == 0 {
		return
	}
	s.commitLocked(next, effects, "sync_progress")
	s.dirty = false
}

func (s *InterviewService) schedulePersistLocked() {
	if s.sessions == nil {
		return
	}
	snap := session.NewSnapshot(s.state.Clone(), s.revision, s.epoch)
	s.pendingMu.Lock()
	s.pending = &snap
	s.pendingMu.Unlock()
	select {
	case s.persistSignal <- struct{}{}:
	default:
	}
}

func (s *InterviewService) runEffects() {
	defer s.wg.Done()
	for {
		select {
		case eff := <-s.effects:
			s.applyEffect(eff)
		case <-s.stop:
			for {
				select {
				case eff := <-s.effects:
					s.applyEffect(eff)
				default:
					return
				}
			}
		}
	}
}

func (s *InterviewService) applyEffect(eff session.Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
	defer cancel()
	// 失败已在 Apply 中记录，不重试
	_ = s.sync.Apply(ctx, eff)
}

func (s *InterviewService) runPersist() {
	defer s.wg.Done()
	for {
		select {
		case <-s.persistSignal:
			s.flush()
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *InterviewService) flush() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.pendingMu.Lock()
	snap := s.pending
	s.pending = nil
	s.pendingMu.Unlock()
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.sessions.Save(ctx, *snap); err != nil {
		logger.Log.Error("Failed to persist interview session, continuing in memory",
			zap.Int64("revision", snap.Revision),
			zap.Error(err))
	}
}

func (s *InterviewService) viewLocked() InterviewView {
	st := s.state.Clone()
	v := InterviewView{
		State:         st,
		Phase:         st.Phase(),
		AnsweredCount: len(st.Answers),
		QuestionCount: len(st.Questions),
	}
	if q := st.CurrentQuestion(); q != nil {
		cq := *q
		v.CurrentQuestion = &cq
		v.DifficultyTier = util.DifficultyTier(string(q.Difficulty))
	}
	if st.TimeRemaining != nil {
		v.TimeTier = util.TimeTier(*st.TimeRemaining)
		v.TimeDisplay = util.FormatCountdown(*st.TimeRemaining)
	}
	return v
}

// seedRevision 返回快照 revision 与候选人记录 SyncRevision 中的较大值
func (s *InterviewService) seedRevision(ctx context.Context, snap session.Snapshot) int64 {
	rev := snap.Revision
	if s.sync == nil || s.sync.Repo == nil || snap.State.CandidateID == "" {
		return rev
	}
	c, err := s.sync.Repo.FindByID(ctx, snap.State.CandidateID)
	if err != nil {
		if !errors.Is(err, util.ErrCandidateNotFound) {
			logger.Log.Warn("Failed to read candidate revision on load",
				zap.String("candidateId", snap.State.CandidateID),
				zap.Error(err))
		}
		return rev
	}
	if c.SyncRevision > rev {
		logger.Log.Info("Candidate record is ahead of the session snapshot",
			zap.String("candidateId", c.ID),
			zap.Int64("snapshotRevision", rev),
			zap.Int64("candidateRevision", c.SyncRevision))
		return c.SyncRevision
	}
	return rev
}
