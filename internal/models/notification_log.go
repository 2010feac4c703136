package models

import "time"

const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

const (
	RecipientTypeContact      = "contact"
	RecipientTypeProfessional = "professional"
	RecipientTypeCareTeam     = "care_team"
)

type NotificationLog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AlertID       uint       `gorm:"not null;index" json:"alert_id"`
	RecipientType string     `gorm:"not null" json:"recipient_type"`
	RecipientID   uint       `json:"recipient_id"`
	Method        string     `gorm:"not null" json:"method"`
	Status        string     `gorm:"not null;default:pending" json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
