package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"interview_backend/internal/model"
)

// SchemaVersion 当前快照格式版本。版本 0 是旧格式，顶层字段可能被编码成 JSON 字符串
const SchemaVersion = 1

// Snapshot 会话的持久化形式。Revision 与 Epoch 属于运行时，跨重启保留，保证候选人写入单调
type Snapshot struct {
	SchemaVersion int   `json:"schemaVersion"`
	Revision      int64 `json:"revision"`
	Epoch         int64 `json:"epoch"`
	State         State `json:"state"`
}

func NewSnapshot(s State, revision, epoch int64) Snapshot {
	return Snapshot{SchemaVersion: SchemaVersion, Revision: revision, Epoch: epoch, State: s}
}

func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Migrate 把任意已知版本的快照解码为当前格式，只在加载时运行一次
func Migrate(raw []byte) (Snapshot, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("decode session snapshot: %w", err)
	}

	version := 0
	if probe.SchemaVersion != nil {
		version = *probe.SchemaVersion
	}
	switch version {
	case 0:
		st, err := migrateLegacy(raw)
		if err != nil {
			return Snapshot{}, err
		}
		return NewSnapshot(st, 0, 0), nil
	case SchemaVersion:
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode session snapshot v%d: %w", version, err)
		}
		snap.State = normalize(snap.State)
		return snap, nil
	default:
		return Snapshot{}, fmt.Errorf("unsupported session schema version %d", version)
	}
}

type legacyState struct {
	IsActive             looseBool                            `json:"isActive"`
	CurrentQuestionIndex looseInt                             `json:"currentQuestionIndex"`
	Questions            looseJSON[[]model.InterviewQuestion] `json:"questions"`
	Answers              looseJSON[[]model.InterviewAnswer]   `json:"answers"`
	TimeRemaining        looseInt                             `json:"timeRemaining"`
	IsCompleted          looseBool                            `json:"isCompleted"`
	ShowWelcomeBackModal looseBool                            `json:"showWelcomeBackModal"`
	ShowPauseModal       looseBool                            `json:"showPauseModal"`
	SessionID            looseString                          `json:"sessionId"`
	CandidateInfo        looseJSON[*model.CandidateInfo]      `json:"candidateInfo"`
	CandidateID          looseString                          `json:"candidateId"`
	StartTime            looseString                          `json:"startTime"`
	EndTime              looseString                          `json:"endTime"`
	PauseTime            looseString                          `json:"pauseTime"`
	LastActivityTime     looseString                          `json:"lastActivityTime"`
	ChatHistory          looseJSON[[]model.ChatMessage]       `json:"chatHistory"`
}

func migrateLegacy(raw []byte) (State, error) {
	var l legacyState
	if err := json.Unmarshal(raw, &l); err != nil {
		return State{}, fmt.Errorf("decode legacy session: %w", err)
	}
	st := State{
		IsActive:             bool(l.IsActive),
		Questions:            l.Questions.v,
		Answers:              l.Answers.v,
		TimeRemaining:        l.TimeRemaining.v,
		IsCompleted:          bool(l.IsCompleted),
		ShowWelcomeBackModal: bool(l.ShowWelcomeBackModal),
		ShowPauseModal:       bool(l.ShowPauseModal),
		SessionID:            string(l.SessionID),
		CandidateInfo:        l.CandidateInfo.v,
		CandidateID:          string(l.CandidateID),
		StartTime:            string(l.StartTime),
		EndTime:              string(l.EndTime),
		PauseTime:            string(l.PauseTime),
		LastActivityTime:     string(l.LastActivityTime),
		ChatHistory:          l.ChatHistory.v,
	}
	if l.CurrentQuestionIndex.v != nil {
		st.CurrentQuestionIndex = *l.CurrentQuestionIndex.v
	}
	return normalize(st), nil
}

// normalize 修正越界索引并补齐 nil 切片，使解码结果与状态转换产生的 State 形状一致
func normalize(s State) State {
	if s.Questions == nil {
		s.Questions = []model.InterviewQuestion{}
	}
	if s.Answers == nil {
		s.Answers = []model.InterviewAnswer{}
	}
	if s.ChatHistory == nil {
		s.ChatHistory = []model.ChatMessage{}
	}
	if s.CurrentQuestionIndex < 0 {
		s.CurrentQuestionIndex = 0
	}
	if s.CurrentQuestionIndex > len(s.Questions) {
		s.CurrentQuestionIndex = len(s.Questions)
	}
	if s.IsActive && s.TimeRemaining == nil {
		if q := s.CurrentQuestion(); q != nil {
			s.TimeRemaining = intPtr(q.TimeLimit)
		}
	}
	return s
}

// unquote 若值是 JSON 字符串则取出其内容，用于处理被二次编码的字段
func unquote(b []byte) ([]byte, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '"' {
		return b, false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return b, false
	}
	return []byte(strings.TrimSpace(s)), true
}

func isNullish(b []byte) bool {
	switch string(b) {
	case "", "null", "undefined":
		return true
	}
	return false
}

type looseBool bool

func (l *looseBool) UnmarshalJSON(b []byte) error {
	inner, _ := unquote(b)
	*l = looseBool(string(inner) == "true")
	return nil
}

type looseInt struct{ v *int }

func (l *looseInt) UnmarshalJSON(b []byte) error {
	inner, _ := unquote(b)
	if isNullish(inner) {
		return nil
	}
	if n, err := strconv.Atoi(string(inner)); err == nil {
		l.v = &n
		return nil
	}
	f, err := strconv.ParseFloat(string(inner), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	l.v = &n
	return nil
}

type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	if inner, ok := unquote([]byte(s)); ok {
		s = string(inner)
	}
	if s == "undefined" || s == "null" {
		s = ""
	}
	*l = looseString(s)
	return nil
}

// looseJSON 接受直接的值或被编码成 JSON 字符串的值
type looseJSON[T any] struct{ v T }

func (l *looseJSON[T]) UnmarshalJSON(b []byte) error {
	inner, _ := unquote(b)
	if isNullish(inner) {
		return nil
	}
	return json.Unmarshal(inner, &l.v)
}
