package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/iitp-cep/portal-service/internal/config"
	"github.com/iitp-cep/portal-service/internal/events"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/session"
)

// Finish page statuses.
const (
	StatusAnswerSaved    = "Answer saved"
	StatusNotYetAnswered = "Not yet answered"
)

type attemptService struct {
	repo      repositories.Repository
	sessions  *session.Store
	publisher events.EventPublisher
	gate      config.AttemptGateMode
	logger    *slog.Logger
}

func NewAttemptService(repo repositories.Repository, sessions *session.Store, publisher events.EventPublisher, gate config.AttemptGateMode, logger *slog.Logger) AttemptService {
	return &attemptService{
		repo:      repo,
		sessions:  sessions,
		publisher: publisher,
		gate:      gate,
		logger:    logger,
	}
}

func (s *attemptService) Detail(ctx context.Context, kind models.AssessmentKind, id uint, now time.Time) (*AssessmentDetailResponse, error) {
	a, err := s.loadAssessment(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !a.IsLive {
		return nil, ErrAssessmentNotLive
	}

	questions, err := s.repo.Question().ListByAssessment(ctx, nil, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	return &AssessmentDetailResponse{
		ID:            a.ID,
		Kind:          a.Kind,
		Title:         a.Title,
		Description:   a.Description,
		CourseName:    a.Course.DisplayName(),
		OpenDate:      a.OpenDate,
		CloseDate:     a.CloseDate,
		DurationMin:   a.DurationMinutes,
		MaxAttempts:   a.MaxAttempts,
		QuestionCount: len(questions),
		StatusLabel:   a.StatusLabel(now),
	}, nil
}

func (s *attemptService) AttemptPage(ctx context.Context, sessionID string, kind models.AssessmentKind, id uint, qParam int, now time.Time) (*AttemptPageResponse, error) {
	a, questions, sess, showAnswer, err := s.loadAttemptState(ctx, sessionID, kind, id, now)
	if err != nil {
		return nil, err
	}

	total := len(questions)
	index := clampIndex(qParam, total)
	q := questions[index-1]

	key := session.AnswerKey(string(kind), a.ID, q.ID)
	saved := sess.Answers[key]

	return &AttemptPageResponse{
		AssessmentID: a.ID,
		Kind:         a.Kind,
		Title:        a.Title,
		Total:        total,
		Index:        index,
		Question:     s.buildAttemptQuestion(q, saved.Answer, showAnswer),
		SavedAnswer:  saved.Answer,
		Flagged:      saved.Flagged,
		Statuses:     buildStatuses(string(kind), a.ID, questions, sess),
	}, nil
}

func (s *attemptService) SaveAnswer(ctx context.Context, sessionID string, kind models.AssessmentKind, id, questionID uint, qIndex int, req *SaveAnswerRequest, now time.Time) (*SaveAnswerResult, error) {
	a, questions, _, _, err := s.loadAttemptState(ctx, sessionID, kind, id, now)
	if err != nil {
		return nil, err
	}

	total := len(questions)
	qIndex = clampIndex(qIndex, total)

	found := false
	for _, q := range questions {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrQuestionNotFound
	}

	key := session.AnswerKey(string(kind), a.ID, questionID)
	err = s.sessions.SaveAnswer(ctx, sessionID, key, session.SavedAnswer{
		Answer:  req.Answer,
		Flagged: req.Flagged,
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	result := &SaveAnswerResult{Saved: true, NextIndex: qIndex}
	switch req.Action {
	case "next":
		if qIndex < total {
			result.NextIndex = qIndex + 1
		}
	case "previous":
		if qIndex > 1 {
			result.NextIndex = qIndex - 1
		}
	case "finish":
		result.Finished = true
	}
	return result, nil
}

func (s *attemptService) FinishSummary(ctx context.Context, sessionID string, username string, kind models.AssessmentKind, id uint, now time.Time) (*FinishSummaryResponse, error) {
	a, questions, sess, _, err := s.loadAttemptState(ctx, sessionID, kind, id, now)
	if err != nil {
		return nil, err
	}

	rows := make([]*FinishRow, 0, len(questions))
	answered := 0
	for i, q := range questions {
		saved := sess.Answers[session.AnswerKey(string(kind), a.ID, q.ID)]
		isAnswered := saved.Answer != ""
		status := StatusNotYetAnswered
		if isAnswered {
			answered++
			status = StatusAnswerSaved
		}
		rows = append(rows, &FinishRow{
			Index:      i + 1,
			QuestionID: q.ID,
			Answered:   isAnswered,
			Flagged:    saved.Flagged,
			Status:     status,
		})
	}

	err = s.publisher.Publish(ctx, events.NewPortalEvent(events.EventAttemptFinished, events.AttemptFinishedEvent{
		AssessmentID: a.ID,
		Kind:         string(a.Kind),
		Username:     username,
		Answered:     answered,
		Total:        len(questions),
		FinishedAt:   now,
	}))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish attempt finished event", "error", err)
	}

	return &FinishSummaryResponse{
		AssessmentID: a.ID,
		Kind:         a.Kind,
		Title:        a.Title,
		Total:        len(questions),
		Answered:     answered,
		Rows:         rows,
	}, nil
}

func (s *attemptService) Review(ctx context.Context, sessionID string, kind models.AssessmentKind, id uint, now time.Time) (*ReviewResponse, error) {
	a, questions, sess, showAnswer, err := s.loadAttemptState(ctx, sessionID, kind, id, now)
	if err != nil {
		return nil, err
	}

	reviews := make([]*ReviewQuestion, 0, len(questions))
	for i, q := range questions {
		saved := sess.Answers[session.AnswerKey(string(kind), a.ID, q.ID)]
		reviews = append(reviews, &ReviewQuestion{
			Index:      i + 1,
			Question:   s.buildAttemptQuestion(q, saved.Answer, showAnswer),
			UserAnswer: saved.Answer,
			Flagged:    saved.Flagged,
		})
	}

	return &ReviewResponse{
		AssessmentID: a.ID,
		Kind:         a.Kind,
		Title:        a.Title,
		ShowAnswer:   showAnswer,
		Questions:    reviews,
	}, nil
}

// loadAttemptState fetches everything an attempt-engine call needs:
// the assessment (gate applied per mode), the fresh question list, the
// visitor session, and the show-answer toggle.
func (s *attemptService) loadAttemptState(ctx context.Context, sessionID string, kind models.AssessmentKind, id uint, now time.Time) (*models.Assessment, []*models.Question, *session.Session, bool, error) {
	a, err := s.loadAssessment(ctx, kind, id)
	if err != nil {
		return nil, nil, nil, false, err
	}

	// Permissive mode leaves deep links open; the detail listing is the
	// only live gate. Strict mode re-checks the window on every load.
	if s.gate == config.GateStrict && !a.Available(now) {
		return nil, nil, nil, false, ErrAssessmentNotLive
	}

	questions, err := s.repo.Question().ListByAssessment(ctx, nil, a.ID)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("failed to load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, nil, nil, false, ErrAssessmentNoContent
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, nil, nil, false, ErrSessionExpired
		}
		return nil, nil, nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	cfg, err := s.repo.SystemConfig().Get(ctx, nil)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("failed to load system config: %w", err)
	}

	return a, questions, sess, cfg.ShowAnswer, nil
}

func (s *attemptService) loadAssessment(ctx context.Context, kind models.AssessmentKind, id uint) (*models.Assessment, error) {
	a, err := s.repo.Assessment().GetByID(ctx, nil, kind, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	return a, nil
}

// buildAttemptQuestion annotates a question for the attempt view.
// Selected options are matched by id; correctness only surfaces when
// the portal is configured to show answers.
func (s *attemptService) buildAttemptQuestion(q *models.Question, savedAnswer string, showAnswer bool) *AttemptQuestion {
	correctID := q.CorrectOptionID()

	out := &AttemptQuestion{
		ID:                q.ID,
		Type:              q.Type,
		Text:              q.Text,
		Marks:             q.Marks,
		AllowCustomAnswer: q.AllowCustomAnswer,
	}

	for _, opt := range q.Options {
		entry := &AttemptOption{
			ID:         opt.ID,
			Label:      opt.Label,
			Text:       opt.Text,
			IsSelected: savedAnswer != "" && savedAnswer == strconv.FormatUint(uint64(opt.ID), 10),
		}
		if showAnswer {
			entry.IsCorrect = opt.ID == correctID
		}
		out.Options = append(out.Options, entry)
	}

	if showAnswer {
		out.CorrectOptionID = correctID
		out.CorrectText = q.CorrectAnswerText
	}
	return out
}

func buildStatuses(kind string, assessmentID uint, questions []*models.Question, sess *session.Session) []*QuestionStatus {
	statuses := make([]*QuestionStatus, 0, len(questions))
	for i, q := range questions {
		saved := sess.Answers[session.AnswerKey(kind, assessmentID, q.ID)]
		statuses = append(statuses, &QuestionStatus{
			Index:    i + 1,
			ID:       q.ID,
			Answered: saved.Answer != "",
			Flagged:  saved.Flagged,
		})
	}
	return statuses
}

// clampIndex forces a 1-based page index into [1, total].
func clampIndex(q, total int) int {
	if q < 1 {
		return 1
	}
	if q > total {
		return total
	}
	return q
}
