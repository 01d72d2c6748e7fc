package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType labels the portal events emitted to the notification topic.
type EventType string

const (
	// Session events
	EventUserLoggedIn  EventType = "user.logged_in"
	EventUserLoggedOut EventType = "user.logged_out"

	// Content events
	EventAssessmentWentLive EventType = "assessment.went_live"
	EventAssessmentClosed   EventType = "assessment.closed"
	EventQuestionsImported  EventType = "questions.imported"

	// Attempt events
	EventAttemptFinished EventType = "attempt.finished"
)

// PortalEvent is the envelope every published event travels in.
type PortalEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// NewPortalEvent wraps a payload in a fresh envelope.
func NewPortalEvent(eventType EventType, data interface{}) *PortalEvent {
	return &PortalEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "portal-service",
		Version:   "1.0",
		Data:      data,
	}
}

type UserLoggedInEvent struct {
	Username   string    `json:"username"`
	FirstLogin bool      `json:"first_login"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

type UserLoggedOutEvent struct {
	Username    string    `json:"username"`
	LoggedOutAt time.Time `json:"logged_out_at"`
}

type AssessmentWentLiveEvent struct {
	AssessmentID uint       `json:"assessment_id"`
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	CourseID     uint       `json:"course_id"`
	OpenDate     time.Time  `json:"open_date"`
	CloseDate    *time.Time `json:"close_date,omitempty"`
}

type AssessmentClosedEvent struct {
	AssessmentID uint   `json:"assessment_id"`
	Kind         string `json:"kind"`
	Title        string `json:"title"`
}

type QuestionsImportedEvent struct {
	AssessmentID uint   `json:"assessment_id"`
	Kind         string `json:"kind"`
	Imported     int    `json:"imported"`
	Actor        string `json:"actor"`
}

type AttemptFinishedEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	Kind         string    `json:"kind"`
	Username     string    `json:"username"`
	Answered     int       `json:"answered"`
	Total        int       `json:"total"`
	FinishedAt   time.Time `json:"finished_at"`
}
