package session

import (
	"time"

	"interview_backend/internal/model"
)

type EffectKind string

const (
	EffectCreateCandidate   EffectKind = "create"
	EffectPauseCandidate    EffectKind = "pause"
	EffectResumeCandidate   EffectKind = "resume"
	EffectSyncProgress      EffectKind = "progress"
	EffectCompleteCandidate EffectKind = "complete"
)

// Effect 状态转换请求的候选人目录写入。Revision 由运行时在提交时填写，
// 目录会忽略不新于已存储版本的写入
type Effect struct {
	Kind        EffectKind
	CandidateID string
	Revision    int64
	At          time.Time

	Info          *model.CandidateInfo
	ChatHistory   []model.ChatMessage
	Answers       []model.InterviewAnswer
	QuestionIndex int
	QuestionCount int
	Questions     []model.InterviewQuestion
	FinalScore    int
	Summary       string
}

func createEffect(s State, at time.Time) Effect {
	info := *s.CandidateInfo
	return Effect{Kind: EffectCreateCandidate, CandidateID: s.CandidateID, At: at, Info: &info}
}

func progressEffect(s State, at time.Time) Effect {
	return Effect{
		Kind:          EffectSyncProgress,
		CandidateID:   s.CandidateID,
		At:            at,
		ChatHistory:   cloneMessages(s.ChatHistory),
		Answers:       cloneAnswers(s.Answers),
		QuestionIndex: s.CurrentQuestionIndex,
		QuestionCount: len(s.Questions),
	}
}

func completeEffect(s State, at time.Time) Effect {
	mean := MeanScore(s.Answers)
	return Effect{
		Kind:          EffectCompleteCandidate,
		CandidateID:   s.CandidateID,
		At:            at,
		ChatHistory:   cloneMessages(s.ChatHistory),
		Answers:       cloneAnswers(s.Answers),
		QuestionIndex: s.CurrentQuestionIndex,
		QuestionCount: len(s.Questions),
		Questions:     append([]model.InterviewQuestion(nil), s.Questions...),
		FinalScore:    mean,
		Summary:       FallbackSummary(mean, len(s.Answers), len(s.Questions)),
	}
}
