package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iitp-cep/portal-service/internal/models"
)

func TestExportQuestions(t *testing.T) {
	repo := newFakeRepository()
	course := seedCourse(repo)
	quiz := repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "Export quiz",
		OpenDate: time.Now(), IsLive: true,
	})

	correct := "B"
	repo.addQuestion(&models.Question{
		AssessmentID: quiz.ID, Type: models.QuestionMCQ, Text: "Pick one",
		Marks: 2, CorrectOption: &correct,
		Options: []models.Option{
			{Label: "A", Text: "first"},
			{Label: "B", Text: "second"},
		},
	})

	svc := NewExportService(repo, testLogger())
	data, filename, err := svc.ExportQuestions(context.Background(), models.KindQuiz, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "quiz_1_questions.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Questions")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "#", rows[0][0])
	assert.Equal(t, "Question Text", rows[0][2])

	assert.Equal(t, "MCQ", rows[1][1])
	assert.Equal(t, "Pick one", rows[1][2])
	assert.Equal(t, "first", rows[1][3])
	assert.Equal(t, "second", rows[1][4])
	assert.Equal(t, "B", rows[1][7])
}

func TestExportQuestionsNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := NewExportService(repo, testLogger())

	_, _, err := svc.ExportQuestions(context.Background(), models.KindQuiz, 42)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}
