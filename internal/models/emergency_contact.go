package models

import "time"

const (
	MinContactPriority     = 1
	MaxContactPriority     = 10
	DefaultContactPriority = 1
)

type EmergencyContact struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Relationship string    `gorm:"not null" json:"relationship"`
	Phone        string    `gorm:"not null" json:"phone"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address,omitempty"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	Priority     int       `gorm:"not null;default:1" json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
