package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AssessmentKind discriminates the three assessment flavors. They share
// one table and one schema; the kind is presentation-level.
type AssessmentKind string

const (
	KindAssignment AssessmentKind = "ASSIGNMENT"
	KindQuiz       AssessmentKind = "QUIZ"
	KindExam       AssessmentKind = "EXAM"
)

// Kinds lists all assessment kinds in display order.
func Kinds() []AssessmentKind {
	return []AssessmentKind{KindAssignment, KindQuiz, KindExam}
}

// ParseKind normalizes a kind tag from a URL path ("quiz", "Quiz",
// "QUIZ" all accepted).
func ParseKind(s string) (AssessmentKind, error) {
	switch AssessmentKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindAssignment:
		return KindAssignment, nil
	case KindQuiz:
		return KindQuiz, nil
	case KindExam:
		return KindExam, nil
	}
	return "", fmt.Errorf("invalid assessment kind %q", s)
}

// Display returns the capitalized form used in labels ("Quiz").
func (k AssessmentKind) Display() string {
	s := strings.ToLower(string(k))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Assessment is a gradeable activity belonging to one course. A nil
// CloseDate means the assessment is open indefinitely; code must treat
// that as a genuine "no deadline" sentinel, never a placeholder date.
type Assessment struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Kind            AssessmentKind `json:"kind" gorm:"not null;index" validate:"required,oneof=ASSIGNMENT QUIZ EXAM"`
	CourseID        uint           `json:"course_id" gorm:"not null;index" validate:"required"`
	Title           string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description     *string        `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	OpenDate        time.Time      `json:"open_date" gorm:"not null;index"`
	CloseDate       *time.Time     `json:"close_date" gorm:"index"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:60" validate:"min=1,max=600"`
	MaxAttempts     int            `json:"max_attempts" gorm:"not null;default:1" validate:"min=1,max=10"`
	IsLive          bool           `json:"is_live" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course    Course     `json:"course" gorm:"foreignKey:CourseID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Available reports whether the assessment is attemptable right now:
// flagged live by an admin and inside its open/close window.
func (a *Assessment) Available(now time.Time) bool {
	return a.IsLive &&
		!a.OpenDate.After(now) &&
		(a.CloseDate == nil || !now.After(*a.CloseDate))
}

// StatusLabel is the readable state shown in the admin console.
func (a *Assessment) StatusLabel(now time.Time) string {
	if !a.IsLive {
		return "Not Live"
	}
	if !a.Available(now) {
		return "Scheduled"
	}
	return "Live Now"
}
