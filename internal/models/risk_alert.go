package models

import "time"

const (
	AlertTypeEmergency     = "emergency"
	AlertTypeBloodPressure = "blood_pressure"
	AlertTypeHeartRate     = "heart_rate"
	AlertTypeTemperature   = "temperature"
	AlertTypeMedication    = "medication"
	AlertTypeAppointment   = "appointment"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type RiskAlert struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"-"`
	AlertType         string         `gorm:"not null" json:"alert_type"`
	Severity          string         `gorm:"not null" json:"severity"`
	Title             string         `gorm:"not null" json:"title"`
	Description       string         `json:"description,omitempty"`
	Data              map[string]any `gorm:"serializer:json" json:"data,omitempty"`
	NotificationsSent bool           `gorm:"not null;default:false" json:"notifications_sent"`
	TriggeredAt       time.Time      `gorm:"not null" json:"triggered_at"`
	AcknowledgedAt    *time.Time     `json:"acknowledged_at,omitempty"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (alert RiskAlert) Active() bool {
	return alert.ResolvedAt == nil
}
