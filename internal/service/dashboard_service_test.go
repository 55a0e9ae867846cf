package service

import (
	"context"
	"testing"

	"interview_backend/internal/model"
	"interview_backend/internal/repository"
	"interview_backend/internal/store/storetest"
	"interview_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(n int) *int { return &n }

func seedDashboard(t *testing.T) *DashboardService {
	t.Helper()
	repo := repository.NewCandidateRepository(storetest.NewGorm(t))
	ctx := context.Background()
	for _, c := range []*model.Candidate{
		{ID: "a", Name: "Alice Walker", Email: "alice@acme.io", InterviewStatus: model.StatusCompleted,
			FinalScore: score(82), StartTime: "2024-05-01T09:00:00.000Z", EndTime: "2024-05-01T09:30:00.000Z"},
		{ID: "b", Name: "bob Stone", Email: "bob@stone.dev", InterviewStatus: model.StatusCompleted,
			FinalScore: score(64), StartTime: "2024-05-02T09:00:00.000Z", EndTime: "2024-05-02T09:40:00.000Z"},
		{ID: "c", Name: "Carol Diaz", Email: "carol@acme.io", InterviewStatus: model.StatusInProgress,
			StartTime: "2024-05-03T09:00:00.000Z"},
		{ID: "d", Name: "Dan Ode", Email: "dan@ode.org", InterviewStatus: model.StatusCompleted,
			FinalScore: score(0), StartTime: "2024-05-04T09:00:00.000Z", EndTime: "2024-05-04T09:10:00.000Z"},
	} {
		require.NoError(t, repo.Save(ctx, c))
	}
	return NewDashboardService(repo)
}

func ids(list []CandidateSummary) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestListCandidatesSorting(t *testing.T) {
	svc := seedDashboard(t)
	ctx := context.Background()

	list, err := svc.ListCandidates(ctx, CandidateQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(list), "score desc, unscored keeps insertion order")

	list, err = svc.ListCandidates(ctx, CandidateQuery{SortBy: SortByName, Order: OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(list))

	list, err = svc.ListCandidates(ctx, CandidateQuery{SortBy: SortByDate, Order: OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids(list), "no end time sorts as oldest")
}

func TestListCandidatesFilters(t *testing.T) {
	svc := seedDashboard(t)
	ctx := context.Background()

	list, err := svc.ListCandidates(ctx, CandidateQuery{Search: "ACME"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, ids(list))

	list, err = svc.ListCandidates(ctx, CandidateQuery{Status: string(model.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(list))

	list, err = svc.ListCandidates(ctx, CandidateQuery{Search: "stone", Status: "all"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, util.TierMedium, list[0].ScoreTier)
	assert.Equal(t, "May 2, 2024, 9:40 AM", list[0].DisplayTime)
}

func TestDashboardStats(t *testing.T) {
	stats, err := seedDashboard(t).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{Total: 4, Completed: 3, InProgress: 1, AverageScore: 73}, *stats)
}

func TestGetAndDeleteCandidate(t *testing.T) {
	svc := seedDashboard(t)
	ctx := context.Background()

	detail, err := svc.GetCandidate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, util.TierHigh, detail.ScoreTier)
	assert.Equal(t, "Alice Walker", detail.Name)

	require.NoError(t, svc.DeleteCandidate(ctx, "a"))
	_, err = svc.GetCandidate(ctx, "a")
	assert.ErrorIs(t, err, util.ErrCandidateNotFound)
	assert.ErrorIs(t, svc.DeleteCandidate(ctx, "a"), util.ErrCandidateNotFound)
}
