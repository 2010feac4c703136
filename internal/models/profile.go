package models

import "time"

type Profile struct {
	ID                    uint       `gorm:"primaryKey" json:"-"`
	UserID                uint       `gorm:"not null;uniqueIndex" json:"-"`
	FullName              string     `json:"full_name"`
	Phone                 string     `json:"phone"`
	Age                   *int       `json:"age,omitempty"`
	Location              string     `json:"location"`
	EmergencyContactName  string     `json:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone"`
	MedicalConditions     string     `json:"medical_conditions"`
	IsPregnant            bool       `gorm:"not null;default:false" json:"is_pregnant"`
	PregnancyLMP          *time.Time `gorm:"column:pregnancy_lmp;type:date" json:"pregnancy_lmp,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
