package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
	"github.com/iitp-cep/portal-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	validator *validator.BusinessValidator
	logger    *slog.Logger
}

func NewCourseService(repo repositories.Repository, v *validator.BusinessValidator, logger *slog.Logger) CourseService {
	return &courseService{repo: repo, validator: v, logger: logger}
}

func (s *courseService) List(ctx context.Context) ([]*CourseResponse, error) {
	courses, err := s.repo.Course().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	out := make([]*CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}
	return out, nil
}

func (s *courseService) GetByCode(ctx context.Context, code string) (*CourseDetailResponse, error) {
	course, err := s.repo.Course().GetByCode(ctx, nil, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	detail := &CourseDetailResponse{
		CourseResponse: *toCourseResponse(course),
		Assignments:    []*LiveAssessmentEntry{},
		Quizzes:        []*LiveAssessmentEntry{},
		Exams:          []*LiveAssessmentEntry{},
	}

	for _, kind := range models.Kinds() {
		rows, err := s.repo.Assessment().ListByCourse(ctx, nil, kind, course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list course %s entries: %w", kind, err)
		}
		entries := make([]*LiveAssessmentEntry, 0, len(rows))
		for _, a := range rows {
			a.Course = *course
			entries = append(entries, toLiveEntry(a))
		}
		switch kind {
		case models.KindAssignment:
			detail.Assignments = entries
		case models.KindQuiz:
			detail.Quizzes = entries
		case models.KindExam:
			detail.Exams = entries
		}
	}
	return detail, nil
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest) (*models.Course, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	exists, err := s.repo.Course().ExistsByCode(ctx, nil, req.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check course code: %w", err)
	}
	if exists {
		return nil, ErrCourseDuplicateCode
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Code:        req.Code,
		Description: req.Description,
	}
	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.InfoContext(ctx, "Course created", "course_id", course.ID, "code", course.Code)
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, verrs
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != course.Code {
			exists, err := s.repo.Course().ExistsByCode(ctx, nil, code, &id)
			if err != nil {
				return nil, fmt.Errorf("failed to check course code: %w", err)
			}
			if exists {
				return nil, ErrCourseDuplicateCode
			}
			course.Code = code
		}
	}
	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = req.Description
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, id uint) error {
	for _, kind := range models.Kinds() {
		rows, err := s.repo.Assessment().ListByCourse(ctx, nil, kind, id)
		if err != nil {
			return fmt.Errorf("failed to check course content: %w", err)
		}
		if len(rows) > 0 {
			return ErrCourseHasContent
		}
	}

	if err := s.repo.Course().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}

	s.logger.InfoContext(ctx, "Course deleted", "course_id", id)
	return nil
}

func toCourseResponse(c *models.Course) *CourseResponse {
	return &CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Code:        c.Code,
		Description: c.Description,
		DisplayName: c.DisplayName(),
	}
}
