package models

import "time"

// HealthcareProfessional is a clinician the user keeps on file. FacilityID
// refers to a facility in the content catalog.
type HealthcareProfessional struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"-"`
	Name           string    `gorm:"not null" json:"name"`
	Specialization string    `gorm:"not null" json:"specialization"`
	Phone          string    `gorm:"not null" json:"phone"`
	Email          string    `json:"email,omitempty"`
	EmergencyPhone string    `json:"emergency_phone,omitempty"`
	LicenseNumber  string    `json:"license_number,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	FacilityID     string    `json:"facility_id,omitempty"`
	IsPrimary      bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AlertPhone is the number to use when an alert is dispatched.
func (professional HealthcareProfessional) AlertPhone() string {
	if professional.EmergencyPhone != "" {
		return professional.EmergencyPhone
	}
	return professional.Phone
}
