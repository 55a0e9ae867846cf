// Package session 面试会话状态机。状态转换是纯函数：输入当前 State，
// 返回下一个 State 以及运行时需要对候选人目录执行的副作用
package session

import (
	"interview_backend/internal/model"
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseCollectingInfo Phase = "collecting_info"
	PhaseActive         Phase = "active"
	PhasePaused         Phase = "paused"
	PhaseCompleted      Phase = "completed"
)

// State 唯一的面试会话记录，当前题目由索引推导，不单独存储
type State struct {
	IsActive             bool                      `json:"isActive"`
	CurrentQuestionIndex int                       `json:"currentQuestionIndex"`
	Questions            []model.InterviewQuestion `json:"questions"`
	Answers              []model.InterviewAnswer   `json:"answers"`
	TimeRemaining        *int                      `json:"timeRemaining,omitempty"`
	IsCompleted          bool                      `json:"isCompleted"`
	ShowWelcomeBackModal bool                      `json:"showWelcomeBackModal"`
	ShowPauseModal       bool                      `json:"showPauseModal"`
	SessionID            string                    `json:"sessionId,omitempty"`
	CandidateInfo        *model.CandidateInfo      `json:"candidateInfo,omitempty"`
	CandidateID          string                    `json:"candidateId,omitempty"`
	StartTime            string                    `json:"startTime,omitempty"`
	EndTime              string                    `json:"endTime,omitempty"`
	PauseTime            string                    `json:"pauseTime,omitempty"`
	LastActivityTime     string                    `json:"lastActivityTime,omitempty"`
	ChatHistory          []model.ChatMessage       `json:"chatHistory"`

	// 信息收集阶段：按顺序待补充的字段与已收集的草稿
	CollectingInfo bool                `json:"collectingInfo,omitempty"`
	PendingFields  []string            `json:"pendingFields,omitempty"`
	InfoDraft      model.CandidateInfo `json:"infoDraft"`
}

// Initial 返回空会话
func Initial() State {
	return State{
		Questions:   []model.InterviewQuestion{},
		Answers:     []model.InterviewAnswer{},
		ChatHistory: []model.ChatMessage{},
	}
}

func (s State) Phase() Phase {
	switch {
	case s.IsCompleted:
		return PhaseCompleted
	case s.CollectingInfo:
		return PhaseCollectingInfo
	case len(s.Questions) == 0:
		return PhaseIdle
	case s.IsActive:
		return PhaseActive
	default:
		return PhasePaused
	}
}

// CurrentQuestion 未完成时为 questions[currentQuestionIndex]
func (s State) CurrentQuestion() *model.InterviewQuestion {
	if s.IsCompleted || s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.CurrentQuestionIndex]
	return &q
}

// HasMessage 对话记录中是否已有该 ID 的消息
func (s State) HasMessage(id string) bool {
	for i := range s.ChatHistory {
		if s.ChatHistory[i].ID == id {
			return true
		}
	}
	return false
}

// Clone 深拷贝所有切片和指针，结果与 s 不共享内存
func (s State) Clone() State {
	c := s
	c.Questions = append([]model.InterviewQuestion{}, s.Questions...)
	c.Answers = cloneAnswers(s.Answers)
	c.ChatHistory = cloneMessages(s.ChatHistory)
	c.PendingFields = append([]string(nil), s.PendingFields...)
	if s.TimeRemaining != nil {
		c.TimeRemaining = intPtr(*s.TimeRemaining)
	}
	if s.CandidateInfo != nil {
		info := *s.CandidateInfo
		c.CandidateInfo = &info
	}
	return c
}

func cloneAnswers(in []model.InterviewAnswer) []model.InterviewAnswer {
	out := make([]model.InterviewAnswer, len(in))
	for i, a := range in {
		if a.DetailedScores != nil {
			ds := *a.DetailedScores
			a.DetailedScores = &ds
		}
		a.Strengths = append([]string(nil), a.Strengths...)
		a.AreasForImprovement = append([]string(nil), a.AreasForImprovement...)
		a.Suggestions = append([]string(nil), a.Suggestions...)
		out[i] = a
	}
	return out
}

func cloneMessages(in []model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, len(in))
	for i, m := range in {
		if m.Score != nil {
			m.Score = intPtr(*m.Score)
		}
		if m.DetailedScores != nil {
			ds := *m.DetailedScores
			m.DetailedScores = &ds
		}
		m.Strengths = append([]string(nil), m.Strengths...)
		m.AreasForImprovement = append([]string(nil), m.AreasForImprovement...)
		m.Suggestions = append([]string(nil), m.Suggestions...)
		out[i] = m
	}
	return out
}

func intPtr(n int) *int { return &n }
