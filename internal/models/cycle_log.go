package models

import "time"

const (
	LogTypePeriod      = "period"
	LogTypeSymptoms    = "symptoms"
	LogTypeMood        = "mood"
	LogTypeTemperature = "temperature"
)

const (
	FlowNone   = "none"
	FlowLight  = "light"
	FlowMedium = "medium"
	FlowHeavy  = "heavy"
)

const (
	MoodHappy     = "happy"
	MoodNeutral   = "neutral"
	MoodSad       = "sad"
	MoodAnxious   = "anxious"
	MoodIrritable = "irritable"
)

type CycleLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uidx_cycle_logs_user_date" json:"-"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uidx_cycle_logs_user_date" json:"date"`
	LogType     string    `gorm:"not null;default:period" json:"log_type"`
	IsPeriod    bool      `gorm:"not null;default:false" json:"is_period"`
	Flow        string    `gorm:"not null;default:none" json:"flow"`
	Symptoms    []string  `gorm:"serializer:json" json:"symptoms"`
	Mood        string    `json:"mood,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
