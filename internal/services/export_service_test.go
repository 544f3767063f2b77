package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

func TestExportService_ExportResults(t *testing.T) {
	env := newSessionTestEnv(t, fixedGrade(90, "ok"))
	bankID, q1, q2 := env.seedGeneralKnowledge()
	aliceID := env.repo.addTaker("Alice")
	bobID := env.repo.addTaker("Bob")
	env.repo.addTaker("Carol")
	ctx := context.Background()

	alice := env.createSession(t, aliceID, bankID)
	_, err := env.svc.Submit(ctx, alice.ID, &SubmitSessionRequest{Answers: []models.UserAnswer{
		{QuestionID: q1.ID, Answer: "Paris"},
		{QuestionID: q2.ID, Answer: "essay"},
	}})
	require.NoError(t, err)

	bob := env.createSession(t, bobID, bankID)
	_, err = env.svc.Submit(ctx, bob.ID, &SubmitSessionRequest{Answers: []models.UserAnswer{
		{QuestionID: q1.ID, Answer: "London"},
	}})
	require.NoError(t, err)

	takers := NewTestTakerService(env.repo, discardLogger(), validator.New(), "https://tests.example.com")
	data, err := NewExportService(takers, discardLogger()).ExportResults(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Name", "Contact", "Test Status", "Session ID", "Score", "Result"}, rows[0])
	assert.Equal(t, []string{"Alice", "alice@example.com", "Completed", alice.ID, "100", "Pass"}, rows[1])
	assert.Equal(t, []string{"Bob", "bob@example.com", "Completed", bob.ID, "0", "Fail"}, rows[2])
	// Trailing empty cells are trimmed by GetRows
	assert.Equal(t, []string{"Carol", "carol@example.com", "Not Started"}, rows[3])
}

func TestExportService_EmptyWorkbook(t *testing.T) {
	repo := newFakeRepository()
	takers := NewTestTakerService(repo, discardLogger(), validator.New(), "https://tests.example.com")

	data, err := NewExportService(takers, discardLogger()).ExportResults(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Name", "Contact", "Test Status", "Session ID", "Score", "Result"}, rows[0])
}
