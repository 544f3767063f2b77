package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

func TestTestTakerService_Create(t *testing.T) {
	repo := newFakeRepository()
	svc := NewTestTakerService(repo, discardLogger(), validator.New(), "https://tests.example.com")

	resp, err := svc.Create(context.Background(), &CreateTestTakerRequest{Name: " Alice ", Contact: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, models.TestNotStarted, resp.TestStatus)
	assert.Nil(t, resp.Score)
	assert.Nil(t, resp.TestLink)

	_, err = svc.Create(context.Background(), &CreateTestTakerRequest{Name: "Bob"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestTestTakerService_ScoreReadThroughSession(t *testing.T) {
	env := newSessionTestEnv(t, fixedGrade(90, "ok"))
	bankID, q1, _ := env.seedGeneralKnowledge()
	aliceID := env.repo.addTaker("Alice")
	bobID := env.repo.addTaker("Bob")
	env.repo.addTaker("Carol")
	created := env.createSession(t, aliceID, bankID)
	env.createSession(t, bobID, bankID)

	svc := NewTestTakerService(env.repo, discardLogger(), validator.New(), "https://tests.example.com")
	ctx := context.Background()

	before, err := svc.GetByID(ctx, aliceID)
	require.NoError(t, err)
	assert.Nil(t, before.Score)
	require.NotNil(t, before.TestLink)
	assert.Equal(t, "https://tests.example.com/test/"+created.ID, *before.TestLink)

	_, err = env.svc.Submit(ctx, created.ID, &SubmitSessionRequest{Answers: []models.UserAnswer{{QuestionID: q1.ID, Answer: "Paris"}}})
	require.NoError(t, err)

	after, err := svc.GetByID(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, after.Score)
	assert.Equal(t, 50, *after.Score)
	assert.Equal(t, models.TestCompleted, after.TestStatus)
	assert.Equal(t, models.SessionCompleted, *after.SessionStatus)

	list, total, err := svc.List(ctx, repositories.TestTakerFilters{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)

	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, 50, *list[0].Score)
	assert.Equal(t, "Bob", list[1].Name)
	assert.Nil(t, list[1].Score)
	assert.Equal(t, models.SessionNotStarted, *list[1].SessionStatus)
	assert.Equal(t, "Carol", list[2].Name)
	assert.Nil(t, list[2].TestLink)

	completed := models.TestCompleted
	list, total, err = svc.List(ctx, repositories.TestTakerFilters{Status: &completed})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, aliceID, list[0].ID)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTestTakerNotFound)
}
