package models

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventAssignmentOpen EventType = "ASSIGNMENT_OPEN"
	EventQuizOpen       EventType = "QUIZ_OPEN"
	EventExamOpen       EventType = "EXAM_OPEN"
	EventDeadline       EventType = "DEADLINE"
	EventNotice         EventType = "NOTICE"
)

// CalendarEvent is a standalone announcement with its own lifecycle,
// optionally tied to a course. The course link is severed, not the
// event deleted, when the course goes away.
type CalendarEvent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Date        datatypes.Date `json:"date" gorm:"not null;index"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	CourseID    *uint          `json:"course_id" gorm:"index"`
	EventType   EventType      `json:"event_type" gorm:"not null;default:NOTICE" validate:"omitempty,oneof=ASSIGNMENT_OPEN QUIZ_OPEN EXAM_OPEN DEADLINE NOTICE"`
	CreatedAt   time.Time      `json:"created_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// EventTypeDisplay maps the stored tag to its readable form.
func (e *CalendarEvent) EventTypeDisplay() string {
	switch e.EventType {
	case EventAssignmentOpen:
		return "Assignment Opened"
	case EventQuizOpen:
		return "Quiz Opened"
	case EventExamOpen:
		return "Exam Opened"
	case EventDeadline:
		return "Submission Deadline"
	case EventNotice:
		return "General Notice"
	default:
		return string(e.EventType)
	}
}
