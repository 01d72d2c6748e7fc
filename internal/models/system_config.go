package models

import "time"

type SystemStatus string

const (
	SystemOnline  SystemStatus = "ONLINE"
	SystemOffline SystemStatus = "OFFLINE"
)

// SystemConfig is the singleton operational toggle row. When no row
// exists the portal behaves as DefaultSystemConfig.
type SystemConfig struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Status      SystemStatus `json:"status" gorm:"not null;default:ONLINE" validate:"omitempty,oneof=ONLINE OFFLINE"`
	PIN         string       `json:"pin" gorm:"not null;size:10;default:4321" validate:"omitempty,min=1,max=10"`
	RootUser    string       `json:"root_user" gorm:"not null;size:100;default:admin"`
	PinRequired bool         `json:"pin_required" gorm:"not null;default:true"`
	ShowAnswer  bool         `json:"show_answer" gorm:"not null;default:true"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (SystemConfig) TableName() string {
	return "system_config"
}

// DefaultSystemConfig is the behavior assumed when the singleton row is
// absent: portal online, PIN required, answers shown.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		Status:      SystemOnline,
		PIN:         "4321",
		RootUser:    "admin",
		PinRequired: true,
		ShowAnswer:  true,
	}
}
