package models

import "time"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	MustChangePassword bool       `gorm:"not null;default:false" json:"must_change_password"`
	CycleLength        int        `gorm:"not null;default:28" json:"cycle_length"`
	PeriodLength       int        `gorm:"not null;default:5" json:"period_length"`
	LastPeriodStart    *time.Time `gorm:"type:date" json:"last_period_start,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
}
