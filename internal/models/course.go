package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course is a subject grouping. Assessments and calendar events hang
// off courses; the code is the human-facing identifier (e.g. "CS101").
type Course struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Code        string         `json:"code" gorm:"not null;uniqueIndex;size:20" validate:"required,min=1,max=20"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Image       datatypes.JSON `json:"image" gorm:"type:jsonb"` // FileRef
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// DisplayName renders "CODE: Title", degrading gracefully when either
// part is empty.
func (c *Course) DisplayName() string {
	switch {
	case c.Code != "" && c.Title != "":
		return c.Code + ": " + c.Title
	case c.Title != "":
		return c.Title
	case c.Code != "":
		return c.Code
	default:
		return "Unknown Course"
	}
}

// FileRef is the stored shape of an uploaded media file, kept as JSONB
// on the owning row.
type FileRef struct {
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	URL         string `json:"url"`
	MimeType    string `json:"mime_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}
