package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iitp-cep/portal-service/internal/events"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/validator"
)

type contentFixture struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	svc       ContentService
	course    *models.Course
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher()
	svc := NewContentService(repo, publisher, validator.NewBusinessValidator(), testLogger())
	return &contentFixture{
		repo:      repo,
		publisher: publisher,
		svc:       svc,
		course:    seedCourse(repo),
	}
}

func TestCreateAssessmentDefaults(t *testing.T) {
	f := newContentFixture(t)

	a, err := f.svc.CreateAssessment(context.Background(), &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Week 1 quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindQuiz, a.Kind)
	assert.Equal(t, 60, a.DurationMinutes)
	assert.Equal(t, 1, a.MaxAttempts)
	assert.False(t, a.IsLive)
	assert.Empty(t, f.publisher.EventsOfType(events.EventAssessmentWentLive))
}

func TestCreateAssessmentRejectsBadWindow(t *testing.T) {
	f := newContentFixture(t)

	open := time.Now()
	closeDate := open.AddDate(0, 0, -1)
	_, err := f.svc.CreateAssessment(context.Background(), &CreateAssessmentRequest{
		Kind:      "exam",
		CourseID:  f.course.ID,
		Title:     "Backwards window",
		OpenDate:  open,
		CloseDate: &closeDate,
	})
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestCreateAssessmentUnknownCourse(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.svc.CreateAssessment(context.Background(), &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: 999,
		Title:    "Orphan quiz",
		OpenDate: time.Now(),
	})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestSetLivePublishesTransitions(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Toggle quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetLive(ctx, models.KindQuiz, a.ID, true))
	assert.Len(t, f.publisher.EventsOfType(events.EventAssessmentWentLive), 1)

	require.NoError(t, f.svc.SetLive(ctx, models.KindQuiz, a.ID, false))
	assert.Len(t, f.publisher.EventsOfType(events.EventAssessmentClosed), 1)

	assert.ErrorIs(t, f.svc.SetLive(ctx, models.KindQuiz, 999, true), ErrAssessmentNotFound)
}

func TestUpdateAssessmentClearCloseDate(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	closeDate := time.Now().AddDate(0, 0, 7)
	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:      "exam",
		CourseID:  f.course.ID,
		Title:     "Final",
		OpenDate:  time.Now(),
		CloseDate: &closeDate,
	})
	require.NoError(t, err)
	require.NotNil(t, a.CloseDate)

	updated, err := f.svc.UpdateAssessment(ctx, models.KindExam, a.ID, &UpdateAssessmentRequest{
		ClearCloseDate: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CloseDate, "cleared deadline means open indefinitely")
}

func TestCreateQuestionWithOptions(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	correct := "B"
	q, err := f.svc.CreateQuestion(ctx, models.KindQuiz, a.ID, &CreateQuestionRequest{
		Type:          "MCQ",
		Text:          "Pick one",
		CorrectOption: &correct,
		Options: []OptionRequest{
			{Label: "a", Text: "first"},
			{Label: "b", Text: "second"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.QuestionMCQ, q.Type)
	assert.Equal(t, float64(1), q.Marks)
	require.Len(t, q.Options, 2)
	assert.Equal(t, "A", q.Options[0].Label, "labels are normalized to uppercase")
}

func TestCreateQuestionShapeValidation(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	// MCQ with a single option is rejected.
	correct := "A"
	_, err = f.svc.CreateQuestion(ctx, models.KindQuiz, a.ID, &CreateQuestionRequest{
		Type:          "MCQ",
		Text:          "Pick one",
		CorrectOption: &correct,
		Options:       []OptionRequest{{Label: "A", Text: "only"}},
	})
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	// TEXT questions cannot carry options.
	_, err = f.svc.CreateQuestion(ctx, models.KindQuiz, a.ID, &CreateQuestionRequest{
		Type:    "TEXT",
		Text:    "Explain",
		Options: []OptionRequest{{Label: "A", Text: "stray"}},
	})
	assert.ErrorAs(t, err, &verrs)
}

func TestBulkImport(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Imported quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	text := `Q: What is 2+2?
A) 3
B) 4 *

Q: The answer to everything?
TEXT: 42`

	result, err := f.svc.BulkImport(ctx, models.KindQuiz, a.ID, text, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Options)

	questions, err := f.svc.ListQuestions(ctx, models.KindQuiz, a.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	mcq := questions[0]
	assert.Equal(t, models.QuestionMCQ, mcq.Type)
	require.NotNil(t, mcq.CorrectOption)
	assert.Equal(t, "B", *mcq.CorrectOption)
	assert.Len(t, mcq.Options, 2)

	textQ := questions[1]
	assert.Equal(t, models.QuestionText, textQ.Type)
	require.NotNil(t, textQ.CorrectAnswerText)
	assert.Equal(t, "42", *textQ.CorrectAnswerText)

	imported := f.publisher.EventsOfType(events.EventQuestionsImported)
	require.Len(t, imported, 1)
}

func TestBulkImportRejectsMalformedText(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAssessment(ctx, &CreateAssessmentRequest{
		Kind:     "quiz",
		CourseID: f.course.ID,
		Title:    "Quiz",
		OpenDate: time.Now(),
	})
	require.NoError(t, err)

	_, err = f.svc.BulkImport(ctx, models.KindQuiz, a.ID, "A) orphan", "admin")
	assert.ErrorIs(t, err, ErrImportMalformed)

	_, err = f.svc.BulkImport(ctx, models.KindQuiz, a.ID, "", "admin")
	assert.ErrorIs(t, err, ErrImportEmpty)

	questions, err := f.svc.ListQuestions(ctx, models.KindQuiz, a.ID)
	require.NoError(t, err)
	assert.Empty(t, questions, "failed imports leave nothing behind")
}
