package models

import (
	"time"
)

// User is a portal participant identified by username alone. There are
// no passwords; access is gated by the global system PIN.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"not null;uniqueIndex;size:100" validate:"required,min=1,max=100"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	IsBanned  bool      `json:"is_banned" gorm:"not null;default:false"`
	IsOnline  bool      `json:"is_online" gorm:"not null;default:false"`
	LastActive time.Time `json:"last_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// RecentlyActive reports whether the user was active within the last
// five minutes.
func (u *User) RecentlyActive(now time.Time) bool {
	return now.Sub(u.LastActive) <= 5*time.Minute
}

// StatusLabel returns the presence label shown in the admin console.
func (u *User) StatusLabel(now time.Time) string {
	if u.IsOnline || u.RecentlyActive(now) {
		return "Online"
	}
	return "Offline"
}
