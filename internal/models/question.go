package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ  QuestionType = "MCQ"
	QuestionCode QuestionType = "CODE"
	QuestionText QuestionType = "TEXT"
)

// OptionLabels are the fixed MCQ choice labels. An MCQ question should
// carry exactly one option per label.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is one prompt belonging to exactly one assessment. It holds
// a real foreign key to the assessments table; the kind of the parent
// lives on the parent row.
type Question struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	AssessmentID uint         `json:"assessment_id" gorm:"not null;index" validate:"required"`
	Type         QuestionType `json:"type" gorm:"not null;default:MCQ" validate:"required,oneof=MCQ CODE TEXT"`
	Text         string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Image        datatypes.JSON `json:"image" gorm:"type:jsonb"` // FileRef
	Marks        float64      `json:"marks" gorm:"not null;default:1"`

	// Exactly one of these is meaningful per type: CorrectOption for
	// MCQ, CorrectAnswerText for TEXT/CODE.
	CorrectOption     *string `json:"correct_option" gorm:"size:1" validate:"omitempty,oneof=A B C D a b c d"`
	CorrectAnswerText *string `json:"correct_answer_text" gorm:"type:text"`
	AllowCustomAnswer bool    `json:"allow_custom_answer" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assessment Assessment `json:"-" gorm:"foreignKey:AssessmentID"`
	Options    []Option   `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionID resolves the stored correct-option label against the
// question's options, case-insensitively. Returns 0 when the question
// has no correct option or no option carries the label.
func (q *Question) CorrectOptionID() uint {
	if q.CorrectOption == nil {
		return 0
	}
	want := strings.ToUpper(strings.TrimSpace(*q.CorrectOption))
	for _, opt := range q.Options {
		if strings.ToUpper(strings.TrimSpace(opt.Label)) == want {
			return opt.ID
		}
	}
	return 0
}

// Option is one choice of an MCQ question, owned exclusively by it.
type Option struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Label      string         `json:"label" gorm:"not null;size:1" validate:"required,oneof=A B C D"`
	Text       string         `json:"text" gorm:"type:text"`
	Image      datatypes.JSON `json:"image" gorm:"type:jsonb"` // FileRef
	CreatedAt  time.Time      `json:"created_at"`
}

func (Option) TableName() string {
	return "options"
}
