package model

type InterviewStatus string

const (
	StatusNotStarted InterviewStatus = "not_started"
	StatusInProgress InterviewStatus = "in_progress"
	StatusPaused     InterviewStatus = "paused"
	StatusCompleted  InterviewStatus = "completed"
)

func (s InterviewStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Candidate 候选人记录，面试进行中由会话同步写入，看板只读
type Candidate struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Email                string            `json:"email"`
	Phone                string            `json:"phone"`
	ResumeText           string            `json:"resumeText,omitempty"`
	ResumeURL            string            `json:"resumeUrl,omitempty"`
	InterviewStatus      InterviewStatus   `json:"interviewStatus"`
	FinalScore           *int              `json:"finalScore,omitempty"`
	Summary              string            `json:"summary,omitempty"`
	StartTime            string            `json:"startTime,omitempty"`
	EndTime              string            `json:"endTime,omitempty"`
	PauseTime            string            `json:"pauseTime,omitempty"`
	ResumeTime           string            `json:"resumeTime,omitempty"`
	LastActivityTime     string            `json:"lastActivityTime,omitempty"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	ChatHistory          []ChatMessage     `json:"chatHistory"`
	InterviewAnswers     []InterviewAnswer `json:"interviewAnswers"`
	// SyncRevision 已应用到该记录的最大会话 revision
	SyncRevision int64 `json:"syncRevision"`
}

// Valid 记录是否包含面板依赖的字段
func (c *Candidate) Valid() bool {
	return c != nil && c.ID != "" && c.Name != "" && c.Email != ""
}
