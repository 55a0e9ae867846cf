package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"interview_backend/internal/model"
	"interview_backend/internal/repository"
	"interview_backend/internal/session"
	"interview_backend/internal/store"
	"interview_backend/internal/store/storetest"
	"interview_backend/internal/timer"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeGateway 可编程的网关替身
type fakeGateway struct {
	mu        sync.Mutex
	questions []model.InterviewQuestion
	score     int
	summary   string
	summaryOK bool
	resume    *model.ResumeData
	resumeErr error

	// scoreGate 非空时 ScoreAnswer 阻塞到其关闭
	scoreGate chan struct{}
	scored    []string
	scoreErrs []error
	summaries []SummaryRequest
}

func (g *fakeGateway) Health(context.Context) error { return nil }

func (g *fakeGateway) GenerateQuestions(context.Context) []model.InterviewQuestion {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.questions == nil {
		return FallbackQuestions()
	}
	return append([]model.InterviewQuestion(nil), g.questions...)
}

func (g *fakeGateway) ScoreAnswer(ctx context.Context, q model.InterviewQuestion, answer string) ScoreResult {
	g.mu.Lock()
	gate := g.scoreGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scored = append(g.scored, q.ID)
	g.scoreErrs = append(g.scoreErrs, ctx.Err())
	return ScoreResult{Success: true, Score: g.score, Feedback: "Solid answer", Strengths: []string{"clarity"}}
}

func (g *fakeGateway) GenerateSummary(_ context.Context, req SummaryRequest) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.summaries = append(g.summaries, req)
	if !g.summaryOK {
		return FallbackSummaryText, false
	}
	return g.summary, true
}

func (g *fakeGateway) ParseResume(context.Context, string, []byte) (*model.ResumeData, error) {
	if g.resumeErr != nil {
		return nil, g.resumeErr
	}
	return g.resume, nil
}

func testQuestions(n, timeLimit int) []model.InterviewQuestion {
	qs := make([]model.InterviewQuestion, n)
	for i := range qs {
		qs[i] = model.InterviewQuestion{
			ID:         fmt.Sprintf("q%d", i+1),
			Text:       fmt.Sprintf("Question %d", i+1),
			Difficulty: model.DifficultyEasy,
			TimeLimit:  timeLimit,
			Category:   "Frontend",
		}
	}
	return qs
}

func completeResume() model.ResumeData {
	return model.ResumeData{Name: "Jane Smith", Email: "jane.smith@company.org", Phone: "5551234567", Text: "cv"}
}

type interviewHarness struct {
	svc        *InterviewService
	gateway    *fakeGateway
	clock      *testClock
	tickers    *timer.ManualFactory
	store      store.Store
	candidates *repository.CandidateRepository
	sessions   *repository.SessionRepository
}

func newInterviewHarness(t *testing.T, gw *fakeGateway) *interviewHarness {
	t.Helper()
	return newInterviewHarnessOn(t, gw, storetest.NewGorm(t), newTestClock())
}

func newInterviewHarnessOn(t *testing.T, gw *fakeGateway, st store.Store, clock *testClock) *interviewHarness {
	t.Helper()
	seq := 0
	var seqMu sync.Mutex
	machine := session.NewMachine(
		session.WithClock(clock.Now),
		session.WithIDGenerator(func(prefix string) string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("%s-%d", prefix, seq)
		}),
	)
	candidates := repository.NewCandidateRepository(st)
	sessions := repository.NewSessionRepository(st, "current")
	syncer := NewCandidateSyncService(candidates, gw, false)
	syncer.now = clock.Now
	tickers := &timer.ManualFactory{}

	svc := NewInterviewService(machine, gw, sessions, syncer, InterviewOptions{
		TickInterval: time.Second,
		SyncInterval: 5 * time.Second,
		NewTicker:    tickers.New,
	})
	t.Cleanup(svc.Close)
	return &interviewHarness{
		svc:        svc,
		gateway:    gw,
		clock:      clock,
		tickers:    tickers,
		store:      st,
		candidates: candidates,
		sessions:   sessions,
	}
}

// countdownTicker 返回当前倒计时使用的 ticker。进度计时器最先创建，倒计时总是最新的 ticker
func (h *interviewHarness) countdownTicker() *timer.ManualTicker {
	return h.tickers.Last()
}
