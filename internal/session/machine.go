package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"interview_backend/internal/model"
	"interview_backend/internal/util"

	"github.com/google/uuid"
)

var (
	ErrNoQuestions        = errors.New("interview needs at least one question")
	ErrNotActive          = errors.New("interview is not active")
	ErrNotPaused          = errors.New("interview is not paused")
	ErrInterviewCompleted = errors.New("interview already completed")
	ErrNoCurrentQuestion  = errors.New("no current question")
	ErrStaleAnswer        = errors.New("answer does not belong to the current question")
	ErrModalWhileActive   = errors.New("prompt cannot be shown while the interview is active")
	ErrCandidateInfoSet   = errors.New("candidate info already collected")
	ErrSessionInProgress  = errors.New("an interview session already exists")
	ErrNotCollectingInfo  = errors.New("not collecting candidate info")
	ErrNotStarted         = errors.New("interview has not started")
)

const (
	feedbackTemplate   = "Your answer has been scored: %d/100"
	summaryTemplate    = "Completed interview with %d%% average score. Answered %d/%d questions."
	infoIntroMessage   = "Hello! I'm your AI interviewer. I noticed some information is missing from your resume. Let me collect that first before we start the interview."
	interviewStartText = "Perfect! Now let's begin the interview. I'll be asking you 6 questions today - 2 easy, 2 medium, and 2 hard questions. Let me prepare some questions for you..."
	welcomeBackText    = "Welcome back! Let's continue your interview."
	noAnswerText       = "No answer provided"
)

var fieldPrompts = map[string]string{
	util.FieldName:  "What is your full name?",
	util.FieldEmail: "What is your email address?",
	util.FieldPhone: "What is your phone number?",
}

// Machine 执行状态转换，本身不持有会话数据，只有时钟和 ID 生成器
type Machine struct {
	now   func() time.Time
	newID func(prefix string) string
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithIDGenerator(gen func(prefix string) string) Option {
	return func(m *Machine) { m.newID = gen }
}

func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		now: time.Now,
		newID: func(prefix string) string {
			return prefix + "_" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Now() time.Time { return m.now() }

func (m *Machine) stamp() string { return util.FormatISO(m.now()) }

// Start 用给定题目开始面试。候选人 ID 每个会话只生成一次，重复开始沿用原 ID，不会再建记录
func (m *Machine) Start(s State, questions []model.InterviewQuestion) (State, []Effect, error) {
	if len(questions) == 0 {
		return s, nil, ErrNoQuestions
	}
	n := s.Clone()
	now := m.stamp()

	n.IsActive = true
	n.IsCompleted = false
	n.Questions = append([]model.InterviewQuestion{}, questions...)
	n.CurrentQuestionIndex = 0
	n.TimeRemaining = intPtr(questions[0].TimeLimit)
	n.Answers = []model.InterviewAnswer{}
	n.SessionID = m.newID("session")
	n.StartTime = now
	n.LastActivityTime = now
	n.EndTime = ""
	n.PauseTime = ""
	n.ShowWelcomeBackModal = false
	n.ShowPauseModal = false
	n.CollectingInfo = false
	n.PendingFields = nil
	m.appendQuestionMessage(&n)

	var effects []Effect
	if n.CandidateInfo != nil && n.CandidateID == "" {
		n.CandidateID = m.newID("candidate")
		effects = append(effects, createEffect(n, m.now()))
	}
	return n, effects, nil
}

// SubmitAnswer 记录当前题目的答案并前进，最后一题的答案完成面试并请求完成同步。
// 暂停期间到达的答案（评分在暂停后才返回）照常记录，但下一题的计时尚未开始：
// 清空 timeRemaining 与 pauseTime，Resume 时按完整时限重新计时
func (m *Machine) SubmitAnswer(s State, answer model.InterviewAnswer) (State, []Effect, error) {
	if s.IsCompleted {
		return s, nil, ErrInterviewCompleted
	}
	cur := s.CurrentQuestion()
	if cur == nil {
		return s, nil, ErrNoCurrentQuestion
	}
	if answer.QuestionID == "" {
		answer.QuestionID = cur.ID
	} else if answer.QuestionID != cur.ID {
		return s, nil, ErrStaleAnswer
	}
	if answer.Timestamp == "" {
		answer.Timestamp = m.stamp()
	}

	n := s.Clone()
	n.Answers = append(n.Answers, cloneAnswers([]model.InterviewAnswer{answer})...)
	n.CurrentQuestionIndex++
	n.LastActivityTime = m.stamp()

	score := answer.Score
	n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
		ID:                  m.newID("feedback"),
		Type:                model.MessageBot,
		Content:             fmt.Sprintf(feedbackTemplate, answer.Score),
		Timestamp:           m.stamp(),
		Score:               &score,
		Feedback:            answer.Feedback,
		DetailedScores:      answer.DetailedScores,
		Strengths:           answer.Strengths,
		AreasForImprovement: answer.AreasForImprovement,
		Suggestions:         answer.Suggestions,
	})

	if n.CurrentQuestionIndex < len(n.Questions) {
		next := n.Questions[n.CurrentQuestionIndex]
		n.TimeRemaining = intPtr(next.TimeLimit)
		if !n.IsActive {
			n.TimeRemaining = nil
			n.PauseTime = ""
		}
		m.appendQuestionMessage(&n)
		return n, nil, nil
	}

	m.finish(&n)
	var effects []Effect
	if n.CandidateID != "" {
		effects = append(effects, completeEffect(n, m.now()))
	}
	return n, effects, nil
}

// Pause 仅在倒计时进行中有效
func (m *Machine) Pause(s State) (State, []Effect, error) {
	if s.Phase() != PhaseActive {
		return s, nil, ErrNotActive
	}
	n := s.Clone()
	n.IsActive = false
	n.ShowPauseModal = true
	n.ShowWelcomeBackModal = false
	n.PauseTime = m.stamp()

	var effects []Effect
	if n.CandidateID != "" {
		effects = append(effects, Effect{Kind: EffectPauseCandidate, CandidateID: n.CandidateID, At: m.now()})
	}
	return n, effects, nil
}

// Resume 重新开始倒计时，离开期间的墙钟时间从剩余时间中扣除。
// 起算点为 pauseTime；重新加载后没有显式暂停时用 lastActivityTime。
// timeRemaining 为空表示当前题目尚未计时，按完整时限开始
func (m *Machine) Resume(s State) (State, []Effect, error) {
	if s.IsCompleted {
		return s, nil, ErrInterviewCompleted
	}
	if s.Phase() != PhasePaused && !s.ShowWelcomeBackModal {
		return s, nil, ErrNotPaused
	}
	cur := s.CurrentQuestion()
	if cur == nil {
		return s, nil, ErrNoCurrentQuestion
	}

	n := s.Clone()
	now := m.now()
	if n.TimeRemaining == nil {
		n.TimeRemaining = intPtr(cur.TimeLimit)
	} else {
		ref := n.PauseTime
		if ref == "" {
			ref = n.LastActivityTime
		}
		n.TimeRemaining = intPtr(remainingAfter(*n.TimeRemaining, ref, now))
	}

	n.IsActive = true
	n.ShowWelcomeBackModal = false
	n.ShowPauseModal = false
	n.PauseTime = ""
	n.LastActivityTime = util.FormatISO(now)
	m.restoreTranscript(&n)

	var effects []Effect
	if n.CandidateID != "" {
		effects = append(effects, Effect{Kind: EffectResumeCandidate, CandidateID: n.CandidateID, At: now})
	}
	return n, effects, nil
}

func remainingAfter(remaining int, since string, now time.Time) int {
	ref, ok := util.ParseISO(since)
	if !ok {
		return remaining
	}
	elapsed := int(math.Floor(now.Sub(ref).Seconds()))
	if elapsed < 0 {
		elapsed = 0
	}
	if left := remaining - elapsed; left > 0 {
		return left
	}
	return 0
}

// Reset 回到初始状态，候选人记录保持不变
func (m *Machine) Reset(State) (State, []Effect, error) {
	return Initial(), nil, nil
}

func (m *Machine) UpdateTimeRemaining(s State, seconds int) (State, []Effect, error) {
	if seconds < 0 {
		seconds = 0
	}
	n := s.Clone()
	n.TimeRemaining = intPtr(seconds)
	return n, nil, nil
}

// SetCandidateInfo 联系信息只写一次，再次写入不同的值会被拒绝
func (m *Machine) SetCandidateInfo(s State, info model.CandidateInfo) (State, []Effect, error) {
	if s.CandidateInfo != nil {
		if *s.CandidateInfo == info {
			return s, nil, nil
		}
		return s, nil, ErrCandidateInfoSet
	}
	n := s.Clone()
	n.CandidateInfo = &info
	return n, nil, nil
}

// AddChatMessage 追加消息，同 ID 的消息已存在时忽略
func (m *Machine) AddChatMessage(s State, msg model.ChatMessage) (State, []Effect, error) {
	if msg.ID == "" {
		msg.ID = m.newID("msg")
	} else if s.HasMessage(msg.ID) {
		return s, nil, nil
	}
	if msg.Timestamp == "" {
		msg.Timestamp = m.stamp()
	}
	n := s.Clone()
	n.ChatHistory = append(n.ChatHistory, cloneMessages([]model.ChatMessage{msg})...)
	return n, nil, nil
}

// End 结束面试，不发送完成同步
func (m *Machine) End(s State) (State, []Effect, error) {
	if s.IsCompleted {
		return s, nil, nil
	}
	if !started(s) {
		return s, nil, ErrNotStarted
	}
	n := s.Clone()
	m.finish(&n)
	return n, nil, nil
}

// Complete 结束面试并请求完成同步；已完成的面试再次调用不做任何改变
func (m *Machine) Complete(s State) (State, []Effect, error) {
	if s.IsCompleted {
		return s, nil, nil
	}
	if !started(s) {
		return s, nil, ErrNotStarted
	}
	n := s.Clone()
	m.finish(&n)
	var effects []Effect
	if n.CandidateID != "" && n.CandidateInfo != nil {
		effects = append(effects, completeEffect(n, m.now()))
	}
	return n, effects, nil
}

// ConfirmPause 把暂停提示切换为欢迎回来提示
func (m *Machine) ConfirmPause(s State) (State, []Effect, error) {
	if !s.ShowPauseModal {
		return s, nil, nil
	}
	n := s.Clone()
	n.ShowPauseModal = false
	n.ShowWelcomeBackModal = true
	return n, nil, nil
}

func (m *Machine) SetShowWelcomeBackModal(s State, show bool) (State, []Effect, error) {
	if show && s.IsActive {
		return s, nil, ErrModalWhileActive
	}
	n := s.Clone()
	n.ShowWelcomeBackModal = show
	if show {
		n.ShowPauseModal = false
	}
	return n, nil, nil
}

func (m *Machine) SetShowPauseModal(s State, show bool) (State, []Effect, error) {
	if show && s.IsActive {
		return s, nil, ErrModalWhileActive
	}
	n := s.Clone()
	n.ShowPauseModal = show
	if show {
		n.ShowWelcomeBackModal = false
	}
	return n, nil, nil
}

// UpdateLastActivity 刷新活动时间。lastActivityTime 是重新加载后 Resume 的起算点，
// 所以只在进行中允许刷新
func (m *Machine) UpdateLastActivity(s State) (State, []Effect, error) {
	if s.Phase() != PhaseActive {
		return s, nil, ErrNotActive
	}
	n := s.Clone()
	n.LastActivityTime = m.stamp()
	return n, nil, nil
}

func (m *Machine) ClearChatHistory(s State) (State, []Effect, error) {
	n := s.Clone()
	n.ChatHistory = []model.ChatMessage{}
	return n, nil, nil
}

// SyncProgress 进行中时请求写入对话记录与答案快照
func (m *Machine) SyncProgress(s State) (State, []Effect, error) {
	if s.CandidateID == "" || !s.IsActive {
		return s, nil, nil
	}
	return s, []Effect{progressEffect(s, m.now())}, nil
}

// SyncCompleted 为已完成的面试重发完成同步
func (m *Machine) SyncCompleted(s State) (State, []Effect, error) {
	if !s.IsCompleted || s.CandidateID == "" || s.CandidateInfo == nil || len(s.Answers) == 0 {
		return s, nil, nil
	}
	return s, []Effect{completeEffect(s, m.now())}, nil
}

// MarkCompleted 规整已答完全部题目的会话
func (m *Machine) MarkCompleted(s State) (State, []Effect, error) {
	if len(s.Questions) == 0 {
		return s, nil, nil
	}
	if !s.IsCompleted && (s.IsActive || s.CurrentQuestionIndex < len(s.Questions)) {
		return s, nil, nil
	}
	n := s.Clone()
	n.IsCompleted = true
	n.IsActive = false
	n.TimeRemaining = nil
	n.ShowWelcomeBackModal = false
	n.ShowPauseModal = false
	if n.EndTime == "" {
		n.EndTime = n.LastActivityTime
		if n.EndTime == "" {
			n.EndTime = m.stamp()
		}
	}
	return n, nil, nil
}

// started 报告面试是否已开始：题目已加载且不在信息收集阶段
func started(s State) bool {
	return len(s.Questions) > 0 && !s.CollectingInfo
}

func (m *Machine) finish(n *State) {
	n.IsActive = false
	n.TimeRemaining = nil
	n.IsCompleted = true
	n.ShowWelcomeBackModal = false
	n.ShowPauseModal = false
	n.PauseTime = ""
	n.EndTime = m.stamp()
}

func (m *Machine) appendQuestionMessage(n *State) {
	q := n.CurrentQuestion()
	if q == nil {
		return
	}
	id := fmt.Sprintf("question-%s-current", q.ID)
	if n.HasMessage(id) {
		return
	}
	n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
		ID:         id,
		Type:       model.MessageBot,
		Content:    q.Text,
		Timestamp:  m.stamp(),
		IsQuestion: true,
		Difficulty: q.Difficulty,
		QuestionID: q.ID,
	})
}

// restoreTranscript 对话记录被清空时，按已答题目重建
func (m *Machine) restoreTranscript(n *State) {
	if len(n.ChatHistory) == 0 && (n.CurrentQuestionIndex > 0 || len(n.Answers) > 0) {
		n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
			ID:        m.newID("welcome"),
			Type:      model.MessageBot,
			Content:   welcomeBackText,
			Timestamp: m.stamp(),
		})
		for i := 0; i < n.CurrentQuestionIndex && i < len(n.Questions); i++ {
			q := n.Questions[i]
			n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
				ID:         fmt.Sprintf("question-%s-restored", q.ID),
				Type:       model.MessageBot,
				Content:    q.Text,
				Timestamp:  m.stamp(),
				IsQuestion: true,
				Difficulty: q.Difficulty,
				QuestionID: q.ID,
			})
			if i < len(n.Answers) {
				n.ChatHistory = append(n.ChatHistory, model.ChatMessage{
					ID:        fmt.Sprintf("answer-%s-restored", q.ID),
					Type:      model.MessageUser,
					Content:   n.Answers[i].Answer,
					Timestamp: m.stamp(),
				})
			}
		}
	}
	m.appendQuestionMessage(n)
}

// MeanScore 答案得分的四舍五入均值，没有答案时为 0
func MeanScore(answers []model.InterviewAnswer) int {
	if len(answers) == 0 {
		return 0
	}
	sum := 0
	for _, a := range answers {
		sum += a.Score
	}
	return int(math.Floor(float64(sum)/float64(len(answers)) + 0.5))
}

func FallbackSummary(mean, answered, total int) string {
	return fmt.Sprintf(summaryTemplate, mean, answered, total)
}

// ExpiredAnswer 倒计时耗尽时记录的答案
func ExpiredAnswer(q model.InterviewQuestion, at time.Time) model.InterviewAnswer {
	return model.InterviewAnswer{
		QuestionID:          q.ID,
		Answer:              "Time expired - no answer provided",
		Score:               0,
		Feedback:            "No answer provided within the time limit",
		TimeSpent:           q.TimeLimit,
		Timestamp:           util.FormatISO(at),
		DetailedScores:      &model.DetailedScores{},
		Strengths:           []string{},
		AreasForImprovement: []string{"Please provide an answer within the time limit"},
		Suggestions:         []string{"Try to answer more quickly or ask for clarification if needed"},
	}
}
