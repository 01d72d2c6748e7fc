package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iitp-cep/portal-service/internal/events"
	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.BusinessValidator
	logger    *slog.Logger
}

func NewContentService(repo repositories.Repository, publisher events.EventPublisher, v *validator.BusinessValidator, logger *slog.Logger) ContentService {
	return &contentService{
		repo:      repo,
		publisher: publisher,
		validator: v,
		logger:    logger,
	}
}

// ===== ASSESSMENTS =====

func (s *contentService) ListAssessments(ctx context.Context, filters repositories.AssessmentFilters) (*AssessmentListResponse, error) {
	rows, total, err := s.repo.Assessment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return &AssessmentListResponse{Assessments: rows, Total: total}, nil
}

func (s *contentService) GetAssessment(ctx context.Context, kind models.AssessmentKind, id uint) (*models.Assessment, error) {
	a, err := s.repo.Assessment().GetByID(ctx, nil, kind, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	return a, nil
}

func (s *contentService) CreateAssessment(ctx context.Context, req *CreateAssessmentRequest) (*models.Assessment, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}
	if verrs := s.validator.ValidateAssessmentWindow(req.OpenDate, req.CloseDate); len(verrs) > 0 {
		return nil, verrs
	}

	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		return nil, ErrInvalidKind
	}

	if _, err := s.repo.Course().GetByID(ctx, nil, req.CourseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to check course: %w", err)
	}

	a := &models.Assessment{
		Kind:            kind,
		CourseID:        req.CourseID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		OpenDate:        req.OpenDate,
		CloseDate:       req.CloseDate,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     req.MaxAttempts,
		IsLive:          req.IsLive,
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = 60
	}
	if a.MaxAttempts == 0 {
		a.MaxAttempts = 1
	}

	if err := s.repo.Assessment().Create(ctx, nil, a); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	if a.IsLive {
		s.publishWentLive(ctx, a)
	}
	s.logger.InfoContext(ctx, "Assessment created", "assessment_id", a.ID, "kind", a.Kind, "title", a.Title)
	return a, nil
}

func (s *contentService) UpdateAssessment(ctx context.Context, kind models.AssessmentKind, id uint, req *UpdateAssessmentRequest) (*models.Assessment, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	a, err := s.GetAssessment(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	wasLive := a.IsLive

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		a.Description = req.Description
	}
	if req.CourseID != nil {
		if _, err := s.repo.Course().GetByID(ctx, nil, *req.CourseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("failed to check course: %w", err)
		}
		a.CourseID = *req.CourseID
	}
	if req.OpenDate != nil {
		a.OpenDate = *req.OpenDate
	}
	if req.ClearCloseDate {
		a.CloseDate = nil
	} else if req.CloseDate != nil {
		a.CloseDate = req.CloseDate
	}
	if req.DurationMinutes != nil {
		a.DurationMinutes = *req.DurationMinutes
	}
	if req.MaxAttempts != nil {
		a.MaxAttempts = *req.MaxAttempts
	}
	if req.IsLive != nil {
		a.IsLive = *req.IsLive
	}

	if verrs := s.validator.ValidateAssessmentWindow(a.OpenDate, a.CloseDate); len(verrs) > 0 {
		return nil, verrs
	}

	if err := s.repo.Assessment().Update(ctx, nil, a); err != nil {
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}

	if !wasLive && a.IsLive {
		s.publishWentLive(ctx, a)
	}
	return a, nil
}

func (s *contentService) SetLive(ctx context.Context, kind models.AssessmentKind, id uint, live bool) error {
	a, err := s.GetAssessment(ctx, kind, id)
	if err != nil {
		return err
	}
	wasLive := a.IsLive

	if err := s.repo.Assessment().SetLive(ctx, nil, kind, id, live); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to toggle live flag: %w", err)
	}

	if live && !wasLive {
		a.IsLive = true
		s.publishWentLive(ctx, a)
	}
	if !live && wasLive {
		err := s.publisher.Publish(ctx, events.NewPortalEvent(events.EventAssessmentClosed, events.AssessmentClosedEvent{
			AssessmentID: a.ID,
			Kind:         string(a.Kind),
			Title:        a.Title,
		}))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish assessment closed event", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "Assessment live flag changed", "assessment_id", id, "kind", kind, "live", live)
	return nil
}

func (s *contentService) DeleteAssessment(ctx context.Context, kind models.AssessmentKind, id uint) error {
	if err := s.repo.Assessment().Delete(ctx, nil, kind, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return fmt.Errorf("failed to delete assessment: %w", err)
	}
	s.logger.InfoContext(ctx, "Assessment deleted", "assessment_id", id, "kind", kind)
	return nil
}

// ===== QUESTIONS =====

func (s *contentService) ListQuestions(ctx context.Context, kind models.AssessmentKind, assessmentID uint) ([]*models.Question, error) {
	if _, err := s.GetAssessment(ctx, kind, assessmentID); err != nil {
		return nil, err
	}
	questions, err := s.repo.Question().ListByAssessment(ctx, nil, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// CreateQuestion writes the question and its options in one
// transaction.
func (s *contentService) CreateQuestion(ctx context.Context, kind models.AssessmentKind, assessmentID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}
	if verrs := s.validator.ValidateQuestionShape(req); len(verrs) > 0 {
		return nil, verrs
	}

	if _, err := s.GetAssessment(ctx, kind, assessmentID); err != nil {
		return nil, err
	}

	question := &models.Question{
		AssessmentID:      assessmentID,
		Type:              models.QuestionType(strings.ToUpper(req.Type)),
		Text:              strings.TrimSpace(req.Text),
		Marks:             req.Marks,
		CorrectOption:     req.CorrectOption,
		CorrectAnswerText: req.CorrectAnswerText,
		AllowCustomAnswer: req.AllowCustomAnswer,
	}
	if question.Marks == 0 {
		question.Marks = 1
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Create(ctx, nil, question); err != nil {
			return err
		}
		for _, opt := range req.Options {
			option := &models.Option{
				QuestionID: question.ID,
				Label:      strings.ToUpper(strings.TrimSpace(opt.Label)),
				Text:       strings.TrimSpace(opt.Text),
			}
			if err := txRepo.Question().CreateOption(ctx, nil, option); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return s.repo.Question().GetByID(ctx, nil, question.ID)
}

func (s *contentService) UpdateQuestion(ctx context.Context, questionID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}

	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, ValidationErrors{{Field: "text", Message: "is required"}}
		}
		question.Text = text
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.CorrectOption != nil {
		question.CorrectOption = req.CorrectOption
	}
	if req.CorrectAnswerText != nil {
		question.CorrectAnswerText = req.CorrectAnswerText
	}
	if req.AllowCustomAnswer != nil {
		question.AllowCustomAnswer = *req.AllowCustomAnswer
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *contentService) DeleteQuestion(ctx context.Context, questionID uint) error {
	if err := s.repo.Question().Delete(ctx, nil, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// ===== BULK IMPORT =====

// BulkImport parses the pasted block and creates every question inside
// one transaction; a single malformed entry rolls back the whole
// import.
func (s *contentService) BulkImport(ctx context.Context, kind models.AssessmentKind, assessmentID uint, text, actor string) (*ImportResult, error) {
	a, err := s.GetAssessment(ctx, kind, assessmentID)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseQuestionBlock(text)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, p := range parsed {
			question := &models.Question{
				AssessmentID:      assessmentID,
				Type:              models.QuestionType(p.Type),
				Text:              p.Text,
				Marks:             1,
				CorrectOption:     p.CorrectLabel(),
				CorrectAnswerText: p.CorrectText,
				AllowCustomAnswer: p.AllowCustom,
			}
			if err := txRepo.Question().Create(ctx, nil, question); err != nil {
				return err
			}
			for _, opt := range p.Options {
				option := &models.Option{
					QuestionID: question.ID,
					Label:      opt.Label,
					Text:       opt.Text,
				}
				if err := txRepo.Question().CreateOption(ctx, nil, option); err != nil {
					return err
				}
				result.Options++
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import questions: %w", err)
	}

	pubErr := s.publisher.Publish(ctx, events.NewPortalEvent(events.EventQuestionsImported, events.QuestionsImportedEvent{
		AssessmentID: a.ID,
		Kind:         string(a.Kind),
		Imported:     result.Imported,
		Actor:        actor,
	}))
	if pubErr != nil {
		s.logger.ErrorContext(ctx, "Failed to publish import event", "error", pubErr)
	}

	s.logger.InfoContext(ctx, "Questions imported",
		"assessment_id", assessmentID,
		"kind", kind,
		"imported", result.Imported,
		"actor", actor)
	return result, nil
}

func (s *contentService) publishWentLive(ctx context.Context, a *models.Assessment) {
	err := s.publisher.Publish(ctx, events.NewPortalEvent(events.EventAssessmentWentLive, events.AssessmentWentLiveEvent{
		AssessmentID: a.ID,
		Kind:         string(a.Kind),
		Title:        a.Title,
		CourseID:     a.CourseID,
		OpenDate:     a.OpenDate,
		CloseDate:    a.CloseDate,
	}))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish assessment live event", "error", err)
	}
}
