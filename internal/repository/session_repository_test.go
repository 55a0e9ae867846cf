package repository

import (
	"context"
	"testing"

	"interview_backend/internal/session"
	"interview_backend/internal/store"
	"interview_backend/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(storetest.NewGorm(t), "")
	ctx := context.Background()

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	st := session.Initial()
	st.CandidateID = "candidate_1"
	require.NoError(t, repo.Save(ctx, session.NewSnapshot(st, 4, 2)))

	snap, err = repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.EqualValues(t, 4, snap.Revision)
	assert.Equal(t, "candidate_1", snap.State.CandidateID)

	require.NoError(t, repo.Delete(ctx))
	snap, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSessionRepositoryMigratesLegacySnapshot(t *testing.T) {
	s := storetest.NewGorm(t)
	repo := NewSessionRepository(s, "current")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.CollectionInterview, "current", []byte(`{"isActive":"false","isCompleted":"true","questions":"[]"}`)))
	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.SchemaVersion, snap.SchemaVersion)
	assert.True(t, snap.State.IsCompleted)
}
