package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"interview_backend/internal/config"
	"interview_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, h http.Handler) *GatewayService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	gw := NewGatewayService(config.GatewayConfig{BaseURL: srv.URL + "/", TimeoutSeconds: 5})
	gw.randIntN = func(n int) int { return n - 1 }
	return gw
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func healthyMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	return mux
}

func TestGenerateQuestionsFromGateway(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("/chat/generate-questions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"questions": []map[string]interface{}{
				{"id": "a", "text": "Explain closures.", "difficulty": "easy", "timeLimit": 20, "category": "Frontend"},
				{"id": "b", "text": "Design a cache.", "difficulty": "hard", "category": "System Design"},
			},
		})
	})
	gw := newTestGateway(t, mux)

	qs := gw.GenerateQuestions(context.Background())
	require.Len(t, qs, 2)
	assert.Equal(t, "a", qs[0].ID)
	assert.Equal(t, 120, qs[1].TimeLimit, "missing time limit derives from difficulty")
}

func TestGenerateQuestionsAcceptsDataEnvelope(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("/chat/generate-questions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"questions": []map[string]interface{}{{"id": "x", "text": "Q", "difficulty": "medium", "timeLimit": 60}},
			},
		})
	})
	qs := newTestGateway(t, mux).GenerateQuestions(context.Background())
	require.Len(t, qs, 1)
	assert.Equal(t, "x", qs[0].ID)
}

func TestGenerateQuestionsFallsBackWhenUnhealthy(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/health/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/chat/generate-questions", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	qs := newTestGateway(t, mux).GenerateQuestions(context.Background())
	assert.False(t, called)
	assert.Equal(t, FallbackQuestions(), qs)

	counts := map[model.Difficulty]int{}
	for _, q := range qs {
		counts[q.Difficulty]++
	}
	assert.Equal(t, map[model.Difficulty]int{"easy": 2, "medium": 2, "hard": 2}, counts)
}

func TestGenerateQuestionsFallsBackOnBadPayload(t *testing.T) {
	mux := healthyMux()
	mux.HandleFunc("/chat/generate-questions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "questions": []interface{}{}})
	})
	assert.Equal(t, FallbackQuestions(), newTestGateway(t, mux).GenerateQuestions(context.Background()))
}

func TestScoreAnswer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/score-answer", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Question model.InterviewQuestion `json:"question"`
			Answer   string                  `json:"answer"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "q1", body.Question.ID)
		assert.Equal(t, "Virtual DOM diffing", body.Answer)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"score":    120,
			"feedback": "Great",
			"detailed_scores": map[string]int{
				"technical_accuracy": 9, "problem_solving": 8, "communication": 14, "relevance": 7, "depth_of_knowledge": 6,
			},
			"strengths": []string{"clear"},
		})
	})
	res := newTestGateway(t, mux).ScoreAnswer(context.Background(),
		model.InterviewQuestion{ID: "q1", Text: "What is React?"}, "Virtual DOM diffing")

	assert.True(t, res.Success)
	assert.False(t, res.Fallback)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 10, res.DetailedScores.Communication)
	assert.Equal(t, []string{"clear"}, res.Strengths)
}

func TestScoreAnswerFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/score-answer", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "error": "quota"})
	})
	res := newTestGateway(t, mux).ScoreAnswer(context.Background(), model.InterviewQuestion{ID: "q1"}, "x")

	assert.True(t, res.Fallback)
	assert.Equal(t, 99, res.Score)
	assert.Equal(t, FallbackScoreFeedback, res.Feedback)
}

func TestFallbackScoreRange(t *testing.T) {
	gw := NewGatewayService(config.GatewayConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	for i := 0; i < 50; i++ {
		res := gw.ScoreAnswer(context.Background(), model.InterviewQuestion{ID: "q"}, "x")
		assert.GreaterOrEqual(t, res.Score, 60)
		assert.Less(t, res.Score, 100)
	}
}

func TestGenerateSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/generate-summary", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Candidate SummaryRequest `json:"candidate"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jane Smith", body.Candidate.Name)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "summary": "Strong candidate."})
	})
	summary, ok := newTestGateway(t, mux).GenerateSummary(context.Background(), SummaryRequest{Name: "Jane Smith"})
	assert.True(t, ok)
	assert.Equal(t, "Strong candidate.", summary)
}

func TestGenerateSummaryFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/generate-summary", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	summary, ok := newTestGateway(t, mux).GenerateSummary(context.Background(), SummaryRequest{})
	assert.False(t, ok)
	assert.Equal(t, FallbackSummaryText, summary)
}

func TestParseResumeUploadsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/resume/parse", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(content))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]string{"name": "Jane Smith", "email": "jane@company.org", "text": "body"},
		})
	})
	data, err := newTestGateway(t, mux).ParseResume(context.Background(), "cv.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", data.Name)
	assert.Equal(t, "body", data.Text)
}

func TestParseResumeReportsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/resume/parse", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "Unsupported file type"})
	})
	_, err := newTestGateway(t, mux).ParseResume(context.Background(), "cv.txt", []byte("x"))
	assert.Error(t, err)
}

func TestSetBaseURLRedirectsRequests(t *testing.T) {
	down := http.NewServeMux()
	down.HandleFunc("/health/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	gw := newTestGateway(t, down)
	assert.Error(t, gw.Health(context.Background()))

	up := httptest.NewServer(healthyMux())
	t.Cleanup(up.Close)
	gw.SetBaseURL(up.URL + "/")
	assert.NoError(t, gw.Health(context.Background()))
}
