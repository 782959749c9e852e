package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careermate/careermate/internal/questionbank"
	"github.com/careermate/careermate/internal/scoring"
)

func seedBank(t *testing.T, n int) questionbank.Store {
	t.Helper()
	bank := questionbank.NewInMemoryStore()
	for i := 0; i < n; i++ {
		_, err := bank.Put(context.Background(), questionbank.Question{
			CareerID:    1,
			Text:        fmt.Sprintf("question %d", i+1),
			Type:        "technical",
			Difficulty:  questionbank.DifficultyBeginner,
			IdealAnswer: "ideal",
		})
		require.NoError(t, err)
	}
	return bank
}

func newTestService(t *testing.T, bankSize int, cfg Config) *Service {
	t.Helper()
	return NewService(NewInMemoryStore(), seedBank(t, bankSize), scoring.NewHeuristicScorer(), nil, cfg)
}

func TestStartInterviewBatchSize(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	sess, questions, err := svc.Start(context.Background(), 1, 1, "", ModeInterview)
	require.NoError(t, err)

	assert.Len(t, questions, 7)
	assert.Len(t, sess.QuestionIDs, 7)
	assert.Equal(t, StatusInProgress, sess.Status)
	assert.Equal(t, 0, sess.Position)
	assert.Equal(t, questionbank.DifficultyBeginner, sess.Difficulty)
	for _, q := range questions {
		assert.Empty(t, q.IdealAnswer)
	}
}

func TestStartTestBatchSize(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	_, questions, err := svc.Start(context.Background(), 1, 1, "", ModeTest)
	require.NoError(t, err)
	assert.Len(t, questions, 10)
}

func TestStartConfiguredBatchSizes(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 3, TestQuestions: 5})

	_, iq, err := svc.Start(context.Background(), 1, 1, "", ModeInterview)
	require.NoError(t, err)
	assert.Len(t, iq, 3)

	_, tq, err := svc.Start(context.Background(), 1, 1, "", ModeTest)
	require.NoError(t, err)
	assert.Len(t, tq, 5)
}

func TestStartFewerQuestionsAvailable(t *testing.T) {
	svc := newTestService(t, 4, Config{})
	sess, questions, err := svc.Start(context.Background(), 1, 1, "", ModeInterview)
	require.NoError(t, err)
	assert.Len(t, questions, 4)
	assert.Len(t, sess.QuestionIDs, 4)
}

func TestStartNoQuestions(t *testing.T) {
	svc := newTestService(t, 0, Config{})
	_, _, err := svc.Start(context.Background(), 1, 1, "", ModeInterview)
	assert.ErrorIs(t, err, questionbank.ErrNoQuestions)
}

func TestStartDuplicateFreeSequence(t *testing.T) {
	svc := newTestService(t, 30, Config{})
	sess, _, err := svc.Start(context.Background(), 1, 1, "", ModeTest)
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, id := range sess.QuestionIDs {
		assert.False(t, seen[id], "question %d sampled twice", id)
		seen[id] = true
	}
}

func TestStartSecondActiveSessionSameModeRejected(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	_, _, err := svc.Start(context.Background(), 1, 1, "", ModeInterview)
	require.NoError(t, err)

	_, _, err = svc.Start(context.Background(), 1, 1, "", ModeInterview)
	assert.ErrorIs(t, err, ErrActiveSession)

	// the test slot is independent of the interview slot
	_, _, err = svc.Start(context.Background(), 1, 1, "", ModeTest)
	assert.NoError(t, err)

	// and other users are unaffected
	_, _, err = svc.Start(context.Background(), 2, 1, "", ModeInterview)
	assert.NoError(t, err)
}

func TestStartRequiresUser(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	_, _, err := svc.Start(context.Background(), 0, 1, "", ModeInterview)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStartUnknownMode(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	_, _, err := svc.Start(context.Background(), 1, 1, "", Mode("quiz"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrActiveSession)
}

func TestCurrentQuestionAndProgress(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	q, prog, err := svc.CurrentQuestion(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.QuestionIDs[0], q.ID)
	assert.Equal(t, "1/3", prog)

	_, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "my first answer", false, "")
	require.NoError(t, err)

	q, prog, err = svc.CurrentQuestion(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.QuestionIDs[1], q.ID)
	assert.Equal(t, "2/3", prog)
}

func TestSubmitInterviewBlankAnswerRejectedWithoutAdvancing(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	_, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "   \n", false, "")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	_, prog, err := svc.CurrentQuestion(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "1/3", prog)
}

func TestSubmitInterviewAudioAnswerMayBeBlank(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	res, err := svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "", true, "audio/1/x.webm")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "2/3", res.Progress)
}

func TestInterviewAutoFinishOnLastAnswer(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 2})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	res, err := svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "I have experience leading a project team.", false, "")
	require.NoError(t, err)
	assert.False(t, res.Completed)
	require.NotNil(t, res.Next)
	assert.Equal(t, sess.QuestionIDs[1], res.Next.ID)

	res, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "first I isolate then I fix", false, "")
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Nil(t, res.Next)
	require.NotNil(t, res.Report)
	assert.Equal(t, 27, res.Report.OverallScore)

	got, err := svc.Get(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, float64(27), *got.Score)

	// the interview slot is free again
	_, _, err = svc.Start(ctx, 1, 1, "", ModeInterview)
	assert.NoError(t, err)
}

func TestSubmitAfterInterviewCompleted(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 1})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	_, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "only answer needed here", false, "")
	require.NoError(t, err)

	_, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "one more", false, "")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	_, _, err = svc.CurrentQuestion(ctx, 1, sess.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestTestDoesNotAutoComplete(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 2})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	res, err := svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[0], "answer a", true)
	require.NoError(t, err)
	assert.False(t, res.AllAnswered)

	res, err = svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[1], "answer b", false)
	require.NoError(t, err)
	assert.True(t, res.AllAnswered)
	assert.Nil(t, res.Report)

	// still in progress: the slot stays held until the explicit finish
	got, err := svc.Get(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	_, _, err = svc.Start(ctx, 1, 1, "", ModeTest)
	assert.ErrorIs(t, err, ErrActiveSession)
}

func TestTestScoreCountsClientMarks(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	marks := []bool{true, false, true}
	for i, id := range sess.QuestionIDs {
		_, err := svc.SubmitTestAnswer(ctx, 1, sess.ID, id, "some answer", marks[i])
		require.NoError(t, err)
	}

	fin, err := svc.Finish(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fin.Score)
	assert.Equal(t, 3, fin.Total)
	assert.Nil(t, fin.Report)
}

func TestTestWrongQuestionRejected(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	// out-of-order submission does not advance the session
	_, err = svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[1], "answer", true)
	assert.ErrorIs(t, err, ErrWrongQuestion)

	_, prog, err := svc.CurrentQuestion(ctx, 1, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "1/3", prog)
}

func TestTestBlankAnswerRejected(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	_, err = svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[0], "  ", true)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestFinishEarlyInterviewScoresAnsweredSubset(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 5})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	_, err = svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "I have experience with a project", false, "")
	require.NoError(t, err)

	fin, err := svc.Finish(ctx, 1, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, fin.Report)
	assert.Positive(t, fin.Score)
	assert.Equal(t, 5, fin.Total)
}

func TestFinishWithNoAnswers(t *testing.T) {
	svc := newTestService(t, 20, Config{InterviewQuestions: 3})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	fin, err := svc.Finish(ctx, 1, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, fin.Report)
	assert.Zero(t, fin.Score)
	assert.Equal(t, "You didn't answer any questions. Please try again.", fin.Report.Feedback)
}

func TestFinishTwice(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 2})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, 1, sess.ID)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, 1, sess.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestOwnershipHidesForeignSessions(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = svc.CurrentQuestion(ctx, 2, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SubmitInterviewAnswer(ctx, 2, sess.ID, "hi there friend", false, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Finish(ctx, 2, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUnknownSession(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	_, err := svc.Get(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModeMismatchedSubmits(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	ctx := context.Background()
	iv, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)
	ts, _, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	_, err = svc.SubmitTestAnswer(ctx, 1, iv.ID, iv.QuestionIDs[0], "answer", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SubmitInterviewAnswer(ctx, 1, ts.ID, "some spoken answer", false, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResultsBreakdown(t *testing.T) {
	svc := newTestService(t, 20, Config{TestQuestions: 2})
	ctx := context.Background()
	sess, questions, err := svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)

	_, err = svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[0], "right", true)
	require.NoError(t, err)
	_, err = svc.SubmitTestAnswer(ctx, 1, sess.ID, sess.QuestionIDs[1], "wrong", false)
	require.NoError(t, err)
	_, err = svc.Finish(ctx, 1, sess.ID)
	require.NoError(t, err)

	_, rows, err := svc.Results(ctx, 1, sess.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, questions[0].Text, rows[0].Question)
	assert.True(t, rows[0].IsCorrect)
	assert.Equal(t, "wrong", rows[1].Answer)
	assert.False(t, rows[1].IsCorrect)
}

func TestListScopedByUserAndMode(t *testing.T) {
	svc := newTestService(t, 20, Config{})
	ctx := context.Background()
	_, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)
	_, _, err = svc.Start(ctx, 1, 1, "", ModeTest)
	require.NoError(t, err)
	_, _, err = svc.Start(ctx, 2, 1, "", ModeInterview)
	require.NoError(t, err)

	got, err := svc.List(ctx, ListOpts{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, ListOpts{UserID: 1, Mode: ModeTest})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ModeTest, got[0].Mode)
}

// enrichFail always errors; the scorer's template feedback must survive.
type enrichFail struct{}

func (enrichFail) Enrich(context.Context, scoring.Report, []string) (scoring.Report, error) {
	return scoring.Report{}, errors.New("backend down")
}

func TestEnrichmentFailureFallsBackToTemplates(t *testing.T) {
	svc := NewService(NewInMemoryStore(), seedBank(t, 20), scoring.NewHeuristicScorer(), enrichFail{}, Config{InterviewQuestions: 1})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	res, err := svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "I have project experience", false, "")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, scoring.DefaultTemplates().Feedback, res.Report.Feedback)
}

// enrichUpper rewrites the prose only.
type enrichUpper struct{}

func (enrichUpper) Enrich(_ context.Context, r scoring.Report, _ []string) (scoring.Report, error) {
	r.Feedback = "richer feedback"
	return r, nil
}

func TestEnrichmentReplacesFeedback(t *testing.T) {
	svc := NewService(NewInMemoryStore(), seedBank(t, 20), scoring.NewHeuristicScorer(), enrichUpper{}, Config{InterviewQuestions: 1})
	ctx := context.Background()
	sess, _, err := svc.Start(ctx, 1, 1, "", ModeInterview)
	require.NoError(t, err)

	res, err := svc.SubmitInterviewAnswer(ctx, 1, sess.ID, "I have project experience", false, "")
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, "richer feedback", res.Report.Feedback)
}
