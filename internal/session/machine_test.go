package session

import (
	"fmt"
	"testing"
	"time"

	"interview_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMachine() (*Machine, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	seq := 0
	m := NewMachine(
		WithClock(clock.Now),
		WithIDGenerator(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s-%d", prefix, seq)
		}),
	)
	return m, clock
}

func testQuestions(n int) []model.InterviewQuestion {
	qs := make([]model.InterviewQuestion, n)
	for i := range qs {
		qs[i] = model.InterviewQuestion{
			ID:         fmt.Sprintf("q%d", i+1),
			Text:       fmt.Sprintf("Question %d", i+1),
			Difficulty: model.DifficultyMedium,
			TimeLimit:  60,
			Category:   "Backend",
		}
	}
	return qs
}

func testInfo() model.CandidateInfo {
	return model.CandidateInfo{Name: "Jane Smith", Email: "jane.smith@company.org", Phone: "5551234567"}
}

func answerFor(q model.InterviewQuestion, score int) model.InterviewAnswer {
	return model.InterviewAnswer{QuestionID: q.ID, Answer: "an answer", Score: score, Feedback: "ok", TimeSpent: 5}
}

func startedState(t *testing.T, m *Machine, n int, withInfo bool) State {
	t.Helper()
	s := Initial()
	if withInfo {
		var err error
		s, _, err = m.SetCandidateInfo(s, testInfo())
		require.NoError(t, err)
	}
	s, _, err := m.Start(s, testQuestions(n))
	require.NoError(t, err)
	return s
}

func TestStartInitializesFirstQuestion(t *testing.T) {
	m, _ := newTestMachine()
	s, effects, err := m.Start(Initial(), testQuestions(3))
	require.NoError(t, err)

	assert.True(t, s.IsActive)
	assert.Equal(t, 0, s.CurrentQuestionIndex)
	require.NotNil(t, s.CurrentQuestion())
	assert.Equal(t, "q1", s.CurrentQuestion().ID)
	require.NotNil(t, s.TimeRemaining)
	assert.Equal(t, 60, *s.TimeRemaining)
	assert.Empty(t, s.Answers)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", s.StartTime)
	assert.Equal(t, s.StartTime, s.LastActivityTime)
	assert.Empty(t, s.CandidateID)
	assert.Empty(t, effects)
	assert.True(t, s.HasMessage("question-q1-current"))
	assert.Equal(t, PhaseActive, s.Phase())
}

func TestStartRejectsEmptyQuestionSet(t *testing.T) {
	m, _ := newTestMachine()
	s, effects, err := m.Start(Initial(), nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Nil(t, effects)
	assert.Equal(t, Initial(), s)
}

func TestStartMintsCandidateIDOnce(t *testing.T) {
	m, _ := newTestMachine()
	s, _, err := m.SetCandidateInfo(Initial(), testInfo())
	require.NoError(t, err)

	s, effects, err := m.Start(s, testQuestions(2))
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectCreateCandidate, effects[0].Kind)
	assert.NotEmpty(t, s.CandidateID)
	assert.Equal(t, s.CandidateID, effects[0].CandidateID)
	assert.Equal(t, "Jane Smith", effects[0].Info.Name)

	id := s.CandidateID
	s, effects, err = m.Start(s, testQuestions(2))
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, id, s.CandidateID)
}

func TestSubmitAnswerCompletesExactlyAfterLastQuestion(t *testing.T) {
	for n := 1; n <= 6; n++ {
		t.Run(fmt.Sprintf("%d questions", n), func(t *testing.T) {
			m, _ := newTestMachine()
			s := startedState(t, m, n, false)
			for i := 0; i < n; i++ {
				assert.False(t, s.IsCompleted, "completed before answer %d", i+1)
				var err error
				s, _, err = m.SubmitAnswer(s, answerFor(s.Questions[i], 70))
				require.NoError(t, err)
				assert.Equal(t, len(s.Answers), s.CurrentQuestionIndex)
			}
			assert.True(t, s.IsCompleted)
			assert.False(t, s.IsActive)
			assert.Nil(t, s.CurrentQuestion())
			assert.Nil(t, s.TimeRemaining)
		})
	}
}

func TestSubmitAnswerAdvancesAndAppendsFeedback(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 2, false)

	s, effects, err := m.SubmitAnswer(s, answerFor(s.Questions[0], 85))
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, 1, s.CurrentQuestionIndex)
	assert.Equal(t, "q2", s.CurrentQuestion().ID)
	assert.Equal(t, 60, *s.TimeRemaining)

	var feedback *model.ChatMessage
	for i := range s.ChatHistory {
		if s.ChatHistory[i].Score != nil {
			feedback = &s.ChatHistory[i]
		}
	}
	require.NotNil(t, feedback)
	assert.Equal(t, "Your answer has been scored: 85/100", feedback.Content)
	assert.Equal(t, model.MessageBot, feedback.Type)
	assert.True(t, s.HasMessage("question-q2-current"))
}

func TestSingleQuestionScenario(t *testing.T) {
	m, clock := newTestMachine()
	s := Initial()
	s, _, err := m.Start(s, []model.InterviewQuestion{{ID: "only", Text: "Q", Difficulty: model.DifficultyEasy, TimeLimit: 1}})
	require.NoError(t, err)

	clock.Advance(time.Second)
	s, _, err = m.SubmitAnswer(s, model.InterviewAnswer{QuestionID: "only", Answer: "A", Score: 50})
	require.NoError(t, err)

	assert.Len(t, s.Answers, 1)
	assert.False(t, s.IsActive)
	assert.True(t, s.IsCompleted)
	assert.Equal(t, "2024-05-01T10:00:01.000Z", s.EndTime)
}

func TestCompletionRequestsSyncWithMeanScore(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 3, true)

	scores := []int{70, 80, 91}
	var effects []Effect
	for i, sc := range scores {
		var err error
		s, effects, err = m.SubmitAnswer(s, answerFor(s.Questions[i], sc))
		require.NoError(t, err)
	}
	require.Len(t, effects, 1)
	eff := effects[0]
	assert.Equal(t, EffectCompleteCandidate, eff.Kind)
	assert.Equal(t, s.CandidateID, eff.CandidateID)
	assert.Equal(t, 80, eff.FinalScore)
	assert.Equal(t, "Completed interview with 80% average score. Answered 3/3 questions.", eff.Summary)
	assert.Len(t, eff.Answers, 3)
	assert.Equal(t, len(s.ChatHistory), len(eff.ChatHistory))
}

func TestSubmitAfterCompletionIsRejected(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 1, true)
	s, _, err := m.SubmitAnswer(s, answerFor(s.Questions[0], 60))
	require.NoError(t, err)

	before := s.Clone()
	after, effects, err := m.SubmitAnswer(s, answerFor(s.Questions[0], 60))
	assert.ErrorIs(t, err, ErrInterviewCompleted)
	assert.Nil(t, effects)
	assert.Equal(t, before, after)
}

func TestSubmitRejectsAnswerForOtherQuestion(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 2, false)
	_, _, err := m.SubmitAnswer(s, answerFor(s.Questions[1], 60))
	assert.ErrorIs(t, err, ErrStaleAnswer)
}

func TestPauseRequiresActive(t *testing.T) {
	m, _ := newTestMachine()
	_, _, err := m.Pause(Initial())
	assert.ErrorIs(t, err, ErrNotActive)

	s := startedState(t, m, 2, true)
	s, effects, err := m.Pause(s)
	require.NoError(t, err)
	assert.False(t, s.IsActive)
	assert.True(t, s.ShowPauseModal)
	assert.False(t, s.ShowWelcomeBackModal)
	assert.NotEmpty(t, s.PauseTime)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectPauseCandidate, effects[0].Kind)
	assert.Equal(t, PhasePaused, s.Phase())

	_, _, err = m.Pause(s)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestResumeChargesPauseDuration(t *testing.T) {
	for _, p := range []int{0, 1, 7, 59, 60, 61, 500} {
		t.Run(fmt.Sprintf("pause %ds", p), func(t *testing.T) {
			m, clock := newTestMachine()
			s := startedState(t, m, 2, false)
			s, _, _ = m.UpdateTimeRemaining(s, 45)

			s, _, err := m.Pause(s)
			require.NoError(t, err)
			clock.Advance(time.Duration(p) * time.Second)
			s, _, err = m.Resume(s)
			require.NoError(t, err)

			want := 45 - p
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, *s.TimeRemaining)
			assert.LessOrEqual(t, *s.TimeRemaining, 45)
			assert.True(t, s.IsActive)
			assert.False(t, s.ShowPauseModal)
			assert.Empty(t, s.PauseTime)
		})
	}
}

func TestResumeIgnoresSubSecondPause(t *testing.T) {
	m, clock := newTestMachine()
	s := startedState(t, m, 1, false)
	s, _, _ = m.Pause(s)
	clock.Advance(900 * time.Millisecond)
	s, _, err := m.Resume(s)
	require.NoError(t, err)
	assert.Equal(t, 60, *s.TimeRemaining)
}

func TestResumeWithoutPauseUsesLastActivity(t *testing.T) {
	m, clock := newTestMachine()
	s := startedState(t, m, 2, true)
	s, _ = m.Rehydrate(s)
	require.True(t, s.ShowWelcomeBackModal)

	clock.Advance(12 * time.Second)
	s, effects, err := m.Resume(s)
	require.NoError(t, err)
	assert.Equal(t, 48, *s.TimeRemaining)
	assert.False(t, s.ShowWelcomeBackModal)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectResumeCandidate, effects[0].Kind)
}

func TestResumeRequiresPausedOrWelcomeBack(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 1, false)
	_, _, err := m.Resume(s)
	assert.ErrorIs(t, err, ErrNotPaused)

	_, _, err = m.Resume(Initial())
	assert.ErrorIs(t, err, ErrNotPaused)
}

func TestResumeRestoresEmptiedTranscript(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 3, false)
	s, _, _ = m.SubmitAnswer(s, answerFor(s.Questions[0], 70))
	s, _, _ = m.Pause(s)
	s, _, _ = m.ClearChatHistory(s)

	s, _, err := m.Resume(s)
	require.NoError(t, err)
	require.NotEmpty(t, s.ChatHistory)
	assert.Equal(t, "Welcome back! Let's continue your interview.", s.ChatHistory[0].Content)
	assert.True(t, s.HasMessage("question-q1-restored"))
	assert.True(t, s.HasMessage("answer-q1-restored"))
	assert.True(t, s.HasMessage("question-q2-current"))
}

func TestResetReturnsInitialState(t *testing.T) {
	m, _ := newTestMachine()
	states := []State{Initial(), startedState(t, m, 3, true)}

	paused, _, _ := m.Pause(startedState(t, m, 2, true))
	states = append(states, paused)

	done := startedState(t, m, 1, true)
	done, _, _ = m.SubmitAnswer(done, answerFor(done.Questions[0], 90))
	states = append(states, done)

	for _, s := range states {
		got, effects, err := m.Reset(s)
		require.NoError(t, err)
		assert.Empty(t, effects)
		assert.Equal(t, Initial(), got)
	}
}

func TestSetCandidateInfoIsWriteOnce(t *testing.T) {
	m, _ := newTestMachine()
	s, _, err := m.SetCandidateInfo(Initial(), testInfo())
	require.NoError(t, err)

	_, _, err = m.SetCandidateInfo(s, testInfo())
	assert.NoError(t, err)

	other := testInfo()
	other.Name = "John Doe"
	_, _, err = m.SetCandidateInfo(s, other)
	assert.ErrorIs(t, err, ErrCandidateInfoSet)
}

func TestAddChatMessageIsIdempotentByID(t *testing.T) {
	m, _ := newTestMachine()
	msg := model.ChatMessage{ID: "m1", Type: model.MessageBot, Content: "hi"}
	s, _, _ := m.AddChatMessage(Initial(), msg)
	s, _, _ = m.AddChatMessage(s, msg)
	assert.Len(t, s.ChatHistory, 1)
	assert.NotEmpty(t, s.ChatHistory[0].Timestamp)

	s, _, _ = m.AddChatMessage(s, model.ChatMessage{Type: model.MessageUser, Content: "no id"})
	assert.Len(t, s.ChatHistory, 2)
	assert.NotEmpty(t, s.ChatHistory[1].ID)
}

func TestModalFlagsStayExclusive(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 2, false)

	_, _, err := m.SetShowWelcomeBackModal(s, true)
	assert.ErrorIs(t, err, ErrModalWhileActive)

	s, _, _ = m.Pause(s)
	s, _, err = m.SetShowWelcomeBackModal(s, true)
	require.NoError(t, err)
	assert.True(t, s.ShowWelcomeBackModal)
	assert.False(t, s.ShowPauseModal)

	s, _, err = m.SetShowPauseModal(s, true)
	require.NoError(t, err)
	assert.True(t, s.ShowPauseModal)
	assert.False(t, s.ShowWelcomeBackModal)

	s, _, _ = m.ConfirmPause(s)
	assert.False(t, s.ShowPauseModal)
	assert.True(t, s.ShowWelcomeBackModal)
}

func TestCompleteAndEnd(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 3, true)
	s, _, _ = m.SubmitAnswer(s, answerFor(s.Questions[0], 40))

	ended, effects, _ := m.End(s)
	assert.True(t, ended.IsCompleted)
	assert.Nil(t, ended.CurrentQuestion())
	assert.Empty(t, effects)

	done, effects, _ := m.Complete(s)
	assert.True(t, done.IsCompleted)
	require.Len(t, effects, 1)
	assert.Equal(t, "Completed interview with 40% average score. Answered 1/3 questions.", effects[0].Summary)

	again, effects, _ := m.Complete(done)
	assert.Empty(t, effects)
	assert.Equal(t, done, again)
}

func TestCompleteAndEndRequireStartedInterview(t *testing.T) {
	m, _ := newTestMachine()
	collecting, _, err := m.BeginInfoCollection(Initial(), model.ResumeData{Name: "Jane Smith"})
	require.NoError(t, err)
	require.Equal(t, PhaseCollectingInfo, collecting.Phase())

	for _, s := range []State{Initial(), collecting} {
		got, effects, err := m.Complete(s)
		assert.ErrorIs(t, err, ErrNotStarted)
		assert.Empty(t, effects)
		assert.Equal(t, s, got)

		_, _, err = m.End(s)
		assert.ErrorIs(t, err, ErrNotStarted)
	}
}

func TestSubmitWhilePausedStartsNextQuestionOnResume(t *testing.T) {
	m, clock := newTestMachine()
	s := startedState(t, m, 3, true)
	s, _, err := m.Pause(s)
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	s, effects, err := m.SubmitAnswer(s, answerFor(s.Questions[0], 75))
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, PhasePaused, s.Phase())
	assert.Equal(t, "q2", s.CurrentQuestion().ID)
	assert.Nil(t, s.TimeRemaining)
	assert.Empty(t, s.PauseTime)

	clock.Advance(90 * time.Second)
	s, _, err = m.Resume(s)
	require.NoError(t, err)
	assert.Equal(t, "q2", s.CurrentQuestion().ID)
	assert.Equal(t, 60, *s.TimeRemaining)
	assert.Len(t, s.Answers, 1)
}

func TestUpdateLastActivityOnlyWhileActive(t *testing.T) {
	m, clock := newTestMachine()
	_, _, err := m.UpdateLastActivity(Initial())
	assert.ErrorIs(t, err, ErrNotActive)

	s := startedState(t, m, 2, false)
	clock.Advance(30 * time.Second)
	s, _, err = m.UpdateLastActivity(s)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:30.000Z", s.LastActivityTime)

	paused, _, _ := m.Pause(s)
	_, _, err = m.UpdateLastActivity(paused)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSyncProgressOnlyWhileActive(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 2, true)
	_, effects, _ := m.SyncProgress(s)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectSyncProgress, effects[0].Kind)
	assert.Equal(t, 2, effects[0].QuestionCount)

	paused, _, _ := m.Pause(s)
	_, effects, _ = m.SyncProgress(paused)
	assert.Empty(t, effects)
}

func TestEffectSnapshotsDoNotAliasState(t *testing.T) {
	m, _ := newTestMachine()
	s := startedState(t, m, 2, true)
	_, effects, _ := m.SyncProgress(s)
	s.ChatHistory[0].Content = "mutated"
	assert.NotEqual(t, "mutated", effects[0].ChatHistory[0].Content)
}

func TestMeanScoreRounding(t *testing.T) {
	assert.Equal(t, 0, MeanScore(nil))
	assert.Equal(t, 83, MeanScore([]model.InterviewAnswer{{Score: 82}, {Score: 83}}))
	assert.Equal(t, 67, MeanScore([]model.InterviewAnswer{{Score: 100}, {Score: 100}, {Score: 0}}))
}

func TestExpiredAnswer(t *testing.T) {
	q := model.InterviewQuestion{ID: "q9", TimeLimit: 120}
	a := ExpiredAnswer(q, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "q9", a.QuestionID)
	assert.Equal(t, "Time expired - no answer provided", a.Answer)
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, 120, a.TimeSpent)
	assert.Equal(t, model.DetailedScores{}, *a.DetailedScores)
	assert.Equal(t, []string{"Please provide an answer within the time limit"}, a.AreasForImprovement)
}
