package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportQuestions renders one assessment's question bank as an xlsx
// workbook, one row per question with its options laid out A-D.
func (s *exportService) ExportQuestions(ctx context.Context, kind models.AssessmentKind, id uint) ([]byte, string, error) {
	a, err := s.repo.Assessment().GetByID(ctx, nil, kind, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrAssessmentNotFound
		}
		return nil, "", fmt.Errorf("failed to load assessment: %w", err)
	}

	questions, err := s.repo.Question().ListByAssessment(ctx, nil, a.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load questions: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Questions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"#", "Type", "Question Text",
		"Option A", "Option B", "Option C", "Option D",
		"Correct Option", "Correct Answer Text", "Marks", "Allow Custom Answer",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, q := range questions {
		row := questionToRow(rowIndex+1, q)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("%s_%d_questions.xlsx", strings.ToLower(string(a.Kind)), a.ID)
	s.logger.InfoContext(ctx, "Exported question bank",
		"assessment_id", a.ID,
		"kind", a.Kind,
		"questions", len(questions))
	return buf.Bytes(), filename, nil
}

func questionToRow(num int, q *models.Question) []interface{} {
	optionTexts := make(map[string]string, len(q.Options))
	for _, opt := range q.Options {
		optionTexts[strings.ToUpper(opt.Label)] = opt.Text
	}

	correctOption := ""
	if q.CorrectOption != nil {
		correctOption = strings.ToUpper(*q.CorrectOption)
	}
	correctText := ""
	if q.CorrectAnswerText != nil {
		correctText = *q.CorrectAnswerText
	}

	return []interface{}{
		num,
		string(q.Type),
		q.Text,
		optionTexts["A"],
		optionTexts["B"],
		optionTexts["C"],
		optionTexts["D"],
		correctOption,
		correctText,
		q.Marks,
		q.AllowCustomAnswer,
	}
}
