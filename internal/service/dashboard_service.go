package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"interview_backend/internal/model"
	"interview_backend/internal/repository"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	SortByScore = "score"
	SortByName  = "name"
	SortByDate  = "date"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DashboardService 面试官看板，只读候选人目录（删除与去重除外）
type DashboardService struct {
	CandidateRepo *repository.CandidateRepository
}

func NewDashboardService(candidateRepo *repository.CandidateRepository) *DashboardService {
	return &DashboardService{CandidateRepo: candidateRepo}
}

type CandidateQuery struct {
	Search string `form:"search"`
	Status string `form:"status"`
	SortBy string `form:"sortBy"`
	Order  string `form:"order"`
}

// CandidateSummary 列表项，附带展示用分档
type CandidateSummary struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	InterviewStatus model.InterviewStatus `json:"interviewStatus"`
	FinalScore      *int                  `json:"finalScore,omitempty"`
	Summary         string                `json:"summary,omitempty"`
	StartTime       string                `json:"startTime,omitempty"`
	EndTime         string                `json:"endTime,omitempty"`
	DisplayTime     string                `json:"displayTime,omitempty"`
	AnsweredCount   int                   `json:"answeredCount"`
	ScoreTier       util.Tier             `json:"scoreTier"`
	StatusTier      util.Tier             `json:"statusTier"`
}

type CandidateDetail struct {
	model.Candidate
	ScoreTier   util.Tier `json:"scoreTier"`
	StatusTier  util.Tier `json:"statusTier"`
	DisplayTime string    `json:"displayTime,omitempty"`
}

type DashboardStats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	InProgress   int `json:"inProgress"`
	AverageScore int `json:"averageScore"`
}

func (s *DashboardService) ListCandidates(ctx context.Context, q CandidateQuery) ([]CandidateSummary, error) {
	all, err := s.CandidateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]model.Candidate, 0, len(all))
	for _, c := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		if q.Status != "" && q.Status != "all" && string(c.InterviewStatus) != q.Status {
			continue
		}
		filtered = append(filtered, c)
	}

	sortCandidates(filtered, q.SortBy, q.Order)

	list := make([]CandidateSummary, len(filtered))
	for i, c := range filtered {
		list[i] = CandidateSummary{
			ID:              c.ID,
			Name:            c.Name,
			Email:           c.Email,
			Phone:           c.Phone,
			InterviewStatus: c.InterviewStatus,
			FinalScore:      c.FinalScore,
			Summary:         c.Summary,
			StartTime:       c.StartTime,
			EndTime:         c.EndTime,
			DisplayTime:     util.FormatDisplayTime(displayTime(c)),
			AnsweredCount:   len(c.InterviewAnswers),
			ScoreTier:       util.ScoreTier(c.FinalScore),
			StatusTier:      util.StatusTier(string(c.InterviewStatus)),
		}
	}
	return list, nil
}

// sortCandidates 默认按分数降序；date 取结束时间，缺失的排在最旧
func sortCandidates(cs []model.Candidate, by, order string) {
	if by == "" {
		by = SortByScore
	}
	desc := order != OrderAsc

	less := func(a, b model.Candidate) bool {
		switch by {
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByDate:
			return endMillis(a) < endMillis(b)
		default:
			return scoreOf(a) < scoreOf(b)
		}
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if desc {
			return less(cs[j], cs[i])
		}
		return less(cs[i], cs[j])
	})
}

func scoreOf(c model.Candidate) int {
	if c.FinalScore == nil {
		return 0
	}
	return *c.FinalScore
}

func endMillis(c model.Candidate) int64 {
	t, ok := util.ParseISO(c.EndTime)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

func displayTime(c model.Candidate) string {
	if c.EndTime != "" {
		return c.EndTime
	}
	return c.StartTime
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	all, err := s.CandidateRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Total: len(all)}
	sum, scored := 0, 0
	for _, c := range all {
		switch c.InterviewStatus {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusInProgress:
			stats.InProgress++
		}
		// 0 分视为未评分
		if c.FinalScore != nil && *c.FinalScore > 0 {
			sum += *c.FinalScore
			scored++
		}
	}
	if scored > 0 {
		stats.AverageScore = int(math.Floor(float64(sum)/float64(scored) + 0.5))
	}
	return stats, nil
}

func (s *DashboardService) GetCandidate(ctx context.Context, id string) (*CandidateDetail, error) {
	c, err := s.CandidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CandidateDetail{
		Candidate:   *c,
		ScoreTier:   util.ScoreTier(c.FinalScore),
		StatusTier:  util.StatusTier(string(c.InterviewStatus)),
		DisplayTime: util.FormatDisplayTime(displayTime(*c)),
	}, nil
}

func (s *DashboardService) DeleteCandidate(ctx context.Context, id string) error {
	return s.CandidateRepo.Delete(ctx, id)
}

// CleanupDuplicates 同一邮箱只保留最近开始的记录
func (s *DashboardService) CleanupDuplicates(ctx context.Context) ([]string, error) {
	removed, err := s.CandidateRepo.CleanupDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		logger.Log.Info("Removed duplicate candidates", zap.Strings("ids", removed))
	}
	return removed, nil
}
