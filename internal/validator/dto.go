package validator

import (
	"time"
)

// LoginRequest is the portal sign-in form: a display name plus the
// shared gate PIN.
type LoginRequest struct {
	Username string `json:"username" validate:"required,username"`
	PIN      string `json:"pin" validate:"omitempty,portal_pin"`
}

type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Code        string  `json:"code" validate:"required,course_code"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Code        *string `json:"code" validate:"omitempty,course_code"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type AssessmentCreateRequest struct {
	Kind            string     `json:"kind" validate:"required,assessment_kind"`
	CourseID        uint       `json:"course_id" validate:"required"`
	Title           string     `json:"title" validate:"required,min=1,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	OpenDate        time.Time  `json:"open_date" validate:"required"`
	CloseDate       *time.Time `json:"close_date"`
	DurationMinutes int        `json:"duration_minutes" validate:"attempt_duration"`
	MaxAttempts     int        `json:"max_attempts" validate:"max_attempts"`
	IsLive          bool       `json:"is_live"`
}

type AssessmentUpdateRequest struct {
	Title           *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	CourseID        *uint      `json:"course_id"`
	OpenDate        *time.Time `json:"open_date"`
	CloseDate       *time.Time `json:"close_date"`
	ClearCloseDate  bool       `json:"clear_close_date"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,attempt_duration"`
	MaxAttempts     *int       `json:"max_attempts" validate:"omitempty,max_attempts"`
	IsLive          *bool      `json:"is_live"`
}

type OptionRequest struct {
	Label string `json:"label" validate:"required,option_label"`
	Text  string `json:"text" validate:"required,min=1,max=2000"`
}

type QuestionCreateRequest struct {
	Type              string          `json:"type" validate:"required,question_type"`
	Text              string          `json:"text" validate:"required,min=1,max=5000"`
	Marks             float64         `json:"marks" validate:"omitempty,min=0,max=100"`
	CorrectOption     *string         `json:"correct_option" validate:"omitempty,option_label"`
	CorrectAnswerText *string         `json:"correct_answer_text" validate:"omitempty,max=5000"`
	AllowCustomAnswer bool            `json:"allow_custom_answer"`
	Options           []OptionRequest `json:"options" validate:"omitempty,max=4,dive"`
}

type QuestionUpdateRequest struct {
	Text              *string `json:"text" validate:"omitempty,min=1,max=5000"`
	Marks             *float64 `json:"marks" validate:"omitempty,min=0,max=100"`
	CorrectOption     *string `json:"correct_option" validate:"omitempty,option_label"`
	CorrectAnswerText *string `json:"correct_answer_text" validate:"omitempty,max=5000"`
	AllowCustomAnswer *bool   `json:"allow_custom_answer"`
}

type EventCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CourseID    *uint   `json:"course_id"`
	EventType   string  `json:"event_type" validate:"required"`
}

// BulkImportRequest carries the pasted question block for an
// assessment.
type BulkImportRequest struct {
	Text string `json:"text" validate:"required"`
}

type SystemConfigUpdateRequest struct {
	Status      *string `json:"status" validate:"omitempty,oneof=ONLINE OFFLINE"`
	PIN         *string `json:"pin" validate:"omitempty,portal_pin"`
	RootUser    *string `json:"root_user" validate:"omitempty,username"`
	PinRequired *bool   `json:"pin_required"`
	ShowAnswer  *bool   `json:"show_answer"`
}

// SaveAnswerRequest is one page submit of an attempt. Action steers
// where the attempt goes next.
type SaveAnswerRequest struct {
	Answer  string `json:"answer" validate:"omitempty,max=10000"`
	Flagged bool   `json:"flagged"`
	Action  string `json:"action" validate:"omitempty,oneof=save next previous finish"`
}
