package model

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// InterviewQuestion 每个会话由网关生成一次，之后不再修改
type InterviewQuestion struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"` // seconds
	Category   string     `json:"category"`
}

// DetailedScores 五项细分评分，每项 0-10
type DetailedScores struct {
	TechnicalAccuracy int `json:"technical_accuracy"`
	ProblemSolving    int `json:"problem_solving"`
	Communication     int `json:"communication"`
	Relevance         int `json:"relevance"`
	DepthOfKnowledge  int `json:"depth_of_knowledge"`
}

type InterviewAnswer struct {
	QuestionID          string          `json:"questionId"`
	Answer              string          `json:"answer"`
	Score               int             `json:"score"`
	Feedback            string          `json:"feedback"`
	TimeSpent           int             `json:"timeSpent"` // seconds
	Timestamp           string          `json:"timestamp"`
	DetailedScores      *DetailedScores `json:"detailed_scores,omitempty"`
	Strengths           []string        `json:"strengths,omitempty"`
	AreasForImprovement []string        `json:"areas_for_improvement,omitempty"`
	Suggestions         []string        `json:"suggestions,omitempty"`
}

type MessageType string

const (
	MessageBot  MessageType = "bot"
	MessageUser MessageType = "user"
)

// ChatMessage ID 由调用方分配，追加时按 ID 去重
type ChatMessage struct {
	ID                  string          `json:"id"`
	Type                MessageType     `json:"type"`
	Content             string          `json:"content"`
	Timestamp           string          `json:"timestamp"`
	IsQuestion          bool            `json:"isQuestion,omitempty"`
	Difficulty          Difficulty      `json:"difficulty,omitempty"`
	QuestionID          string          `json:"questionId,omitempty"`
	Score               *int            `json:"score,omitempty"`
	Feedback            string          `json:"feedback,omitempty"`
	DetailedScores      *DetailedScores `json:"detailed_scores,omitempty"`
	Strengths           []string        `json:"strengths,omitempty"`
	AreasForImprovement []string        `json:"areas_for_improvement,omitempty"`
	Suggestions         []string        `json:"suggestions,omitempty"`
}

type CandidateInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resumeText,omitempty"`
	ResumeURL  string `json:"resumeUrl,omitempty"`
}

// ResumeData 简历提取结果，任何联系字段都可能为空
type ResumeData struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Text  string `json:"text"`
	// URL 归档后的简历地址，由上传接口填写
	URL string `json:"url,omitempty"`
}
