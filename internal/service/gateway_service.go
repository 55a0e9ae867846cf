package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"interview_backend/internal/config"
	"interview_backend/internal/model"
	"interview_backend/pkg/logger"
	"interview_backend/pkg/monitoring"
	"interview_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	endpointHealth            = "/health/"
	endpointGenerateQuestions = "/chat/generate-questions"
	endpointScoreAnswer       = "/chat/score-answer"
	endpointGenerateSummary   = "/chat/generate-summary"
	endpointParseResume       = "/resume/parse"

	FallbackScoreFeedback = "AI scoring temporarily unavailable. This is a placeholder score."
	FallbackSummaryText   = "AI summary generation temporarily unavailable. Please review the interview responses manually."
)

// FallbackQuestions 网关不可用时使用的固定题目（2 简单 / 2 中等 / 2 困难）
func FallbackQuestions() []model.InterviewQuestion {
	return []model.InterviewQuestion{
		{ID: "1", Text: "What is React and how does it work?", Difficulty: model.DifficultyEasy, TimeLimit: 20, Category: "Frontend"},
		{ID: "2", Text: "Explain the difference between state and props in React.", Difficulty: model.DifficultyEasy, TimeLimit: 20, Category: "Frontend"},
		{ID: "3", Text: "How would you optimize a React application for performance?", Difficulty: model.DifficultyMedium, TimeLimit: 60, Category: "Frontend"},
		{ID: "4", Text: "Describe your experience with Node.js and Express.", Difficulty: model.DifficultyMedium, TimeLimit: 60, Category: "Backend"},
		{ID: "5", Text: "Design a scalable architecture for a real-time chat application.", Difficulty: model.DifficultyHard, TimeLimit: 120, Category: "System Design"},
		{ID: "6", Text: "How would you handle authentication and authorization in a microservices architecture?", Difficulty: model.DifficultyHard, TimeLimit: 120, Category: "Backend"},
	}
}

// Gateway 面试运行时依赖的 AI 服务接口。出题和评分不会失败，出错时降级为本地兜底
type Gateway interface {
	Health(ctx context.Context) error
	GenerateQuestions(ctx context.Context) []model.InterviewQuestion
	ScoreAnswer(ctx context.Context, q model.InterviewQuestion, answer string) ScoreResult
	GenerateSummary(ctx context.Context, req SummaryRequest) (string, bool)
	ParseResume(ctx context.Context, filename string, content []byte) (*model.ResumeData, error)
}

type ScoreResult struct {
	Success             bool                  `json:"success"`
	Score               int                   `json:"score"`
	Feedback            string                `json:"feedback"`
	DetailedScores      *model.DetailedScores `json:"detailed_scores,omitempty"`
	Strengths           []string              `json:"strengths,omitempty"`
	AreasForImprovement []string              `json:"areas_for_improvement,omitempty"`
	Suggestions         []string              `json:"suggestions,omitempty"`
	Error               string                `json:"error,omitempty"`
	Fallback            bool                  `json:"-"`
}

type SummaryAnswer struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

type SummaryQuestion struct {
	Text string `json:"text"`
}

type SummaryRequest struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Answers    []SummaryAnswer   `json:"answers"`
	Questions  []SummaryQuestion `json:"questions"`
	FinalScore *int              `json:"finalScore,omitempty"`
}

type GatewayService struct {
	mu       sync.RWMutex
	baseURL  string
	client   *http.Client
	randIntN func(n int) int
}

func NewGatewayService(cfg config.GatewayConfig) *GatewayService {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GatewayService{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		randIntN: rand.IntN,
	}
}

// SetBaseURL 切换网关地址，对之后的请求生效
func (s *GatewayService) SetBaseURL(baseURL string) {
	s.mu.Lock()
	s.baseURL = strings.TrimRight(baseURL, "/")
	s.mu.Unlock()
}

func (s *GatewayService) url() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseURL
}

func (s *GatewayService) Health(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.health")
	defer func() { tracing.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url()+endpointHealth, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *GatewayService) GenerateQuestions(ctx context.Context) []model.InterviewQuestion {
	qs, err := s.generateQuestions(ctx)
	if err != nil {
		s.fallback(endpointGenerateQuestions, err)
		return FallbackQuestions()
	}
	return qs
}

func (s *GatewayService) generateQuestions(ctx context.Context) (qs []model.InterviewQuestion, err error) {
	if err := s.Health(ctx); err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}

	ctx, span := tracing.StartSpan(ctx, "gateway.generate_questions")
	defer func() { tracing.EndSpan(span, err) }()

	var result struct {
		Success   bool                      `json:"success"`
		Questions []model.InterviewQuestion `json:"questions"`
		Data      *struct {
			Questions []model.InterviewQuestion `json:"questions"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := s.postJSON(ctx, endpointGenerateQuestions, struct{}{}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, gatewayError(result.Error, "question generation failed")
	}

	qs = result.Questions
	if len(qs) == 0 && result.Data != nil {
		qs = result.Data.Questions
	}
	if err := normalizeQuestions(qs); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("questions", len(qs)))
	return qs, nil
}

// normalizeQuestions 按难度补齐缺失的时限，题目不可用时返回错误
func normalizeQuestions(qs []model.InterviewQuestion) error {
	if len(qs) == 0 {
		return errors.New("gateway returned no questions")
	}
	seen := make(map[string]bool, len(qs))
	for i := range qs {
		q := &qs[i]
		if q.ID == "" || strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d is missing id or text", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		switch q.Difficulty {
		case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		default:
			q.Difficulty = model.DifficultyEasy
		}
		if q.TimeLimit <= 0 {
			q.TimeLimit = DefaultTimeLimit(q.Difficulty)
		}
	}
	return nil
}

// DefaultTimeLimit 简单 20 秒，中等 60 秒，困难 120 秒
func DefaultTimeLimit(d model.Difficulty) int {
	switch d {
	case model.DifficultyMedium:
		return 60
	case model.DifficultyHard:
		return 120
	default:
		return 20
	}
}

func (s *GatewayService) ScoreAnswer(ctx context.Context, q model.InterviewQuestion, answer string) ScoreResult {
	res, err := s.scoreAnswer(ctx, q, answer)
	if err != nil {
		s.fallback(endpointScoreAnswer, err)
		return ScoreResult{
			Success:  false,
			Score:    s.randIntN(40) + 60,
			Feedback: FallbackScoreFeedback,
			Fallback: true,
		}
	}
	return res
}

func (s *GatewayService) scoreAnswer(ctx context.Context, q model.InterviewQuestion, answer string) (res ScoreResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.score_answer", attribute.String("question.id", q.ID))
	defer func() { tracing.EndSpan(span, err) }()

	body := struct {
		Question model.InterviewQuestion `json:"question"`
		Answer   string                  `json:"answer"`
	}{Question: q, Answer: answer}

	if err := s.postJSON(ctx, endpointScoreAnswer, body, &res); err != nil {
		return ScoreResult{}, err
	}
	if !res.Success {
		return ScoreResult{}, gatewayError(res.Error, "scoring failed")
	}
	res.Score = clamp(res.Score, 0, 100)
	if res.DetailedScores != nil {
		d := res.DetailedScores
		d.TechnicalAccuracy = clamp(d.TechnicalAccuracy, 0, 10)
		d.ProblemSolving = clamp(d.ProblemSolving, 0, 10)
		d.Communication = clamp(d.Communication, 0, 10)
		d.Relevance = clamp(d.Relevance, 0, 10)
		d.DepthOfKnowledge = clamp(d.DepthOfKnowledge, 0, 10)
	}
	span.SetAttributes(attribute.Int("score", res.Score))
	return res, nil
}

// GenerateSummary 成功时返回 AI 总结和 true，否则返回兜底文本和 false
func (s *GatewayService) GenerateSummary(ctx context.Context, req SummaryRequest) (string, bool) {
	summary, err := s.generateSummary(ctx, req)
	if err != nil {
		s.fallback(endpointGenerateSummary, err)
		return FallbackSummaryText, false
	}
	return summary, true
}

func (s *GatewayService) generateSummary(ctx context.Context, req SummaryRequest) (summary string, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.generate_summary")
	defer func() { tracing.EndSpan(span, err) }()

	var result struct {
		Success bool   `json:"success"`
		Summary string `json:"summary"`
		Error   string `json:"error"`
	}
	body := struct {
		Candidate SummaryRequest `json:"candidate"`
	}{Candidate: req}
	if err := s.postJSON(ctx, endpointGenerateSummary, body, &result); err != nil {
		return "", err
	}
	if !result.Success || strings.TrimSpace(result.Summary) == "" {
		return "", gatewayError(result.Error, "summary generation failed")
	}
	return result.Summary, nil
}

// ParseResume 以 multipart 字段 "file" 上传文件
func (s *GatewayService) ParseResume(ctx context.Context, filename string, content []byte) (data *model.ResumeData, err error) {
	ctx, span := tracing.StartSpan(ctx, "gateway.parse_resume", attribute.String("file.name", filename))
	defer func() { tracing.EndSpan(span, err) }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url()+endpointParseResume, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result struct {
		Success bool              `json:"success"`
		Data    *model.ResumeData `json:"data"`
		Error   string            `json:"error"`
	}
	if err := s.do(req, &result); err != nil {
		return nil, err
	}
	if !result.Success || result.Data == nil {
		return nil, gatewayError(result.Error, "résumé parsing failed")
	}
	return result.Data, nil
}

func (s *GatewayService) postJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url()+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *GatewayService) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

func (s *GatewayService) fallback(endpoint string, err error) {
	monitoring.GatewayFallbacks.WithLabelValues(endpoint).Inc()
	logger.Log.Warn("Gateway call failed, using local fallback",
		zap.String("endpoint", endpoint),
		zap.Error(err))
}

func gatewayError(msg, def string) error {
	if msg == "" {
		msg = def
	}
	return errors.New(msg)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
