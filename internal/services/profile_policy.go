package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
)

const (
	minFullNameLength          = 2
	maxFullNameLength          = 100
	maxLocationLength          = 100
	maxMedicalConditionsLength = 1000
	minProfileAge              = 13
	maxProfileAge              = 100
)

var (
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s'-]*$`)
	ghanaPhonePattern = regexp.MustCompile(`^\+233\d{9}$`)
)

var (
	ErrProfileFullNameInvalid          = errors.New("full name must be 2 to 100 letters, spaces, apostrophes or hyphens")
	ErrProfilePhoneInvalid             = errors.New("phone number must be in format +233XXXXXXXXX")
	ErrProfileAgeOutOfRange            = errors.New("age must be between 13 and 100")
	ErrProfileLocationTooLong          = errors.New("location is too long")
	ErrProfileEmergencyNameInvalid     = errors.New("emergency contact name is invalid")
	ErrProfileEmergencyPhoneInvalid    = errors.New("emergency contact phone must be in format +233XXXXXXXXX")
	ErrProfileMedicalConditionsTooLong = errors.New("medical conditions description is too long")
	ErrProfilePregnancyLMPRequired     = errors.New("pregnancy requires the last menstrual period date")
	ErrProfilePregnancyLMPInvalid      = errors.New("last menstrual period date is invalid")
)

type ProfileInput struct {
	FullName              string
	Phone                 string
	Age                   *int
	Location              string
	EmergencyContactName  string
	EmergencyContactPhone string
	MedicalConditions     string
	IsPregnant            bool
	PregnancyLMPRaw       string
}

// NormalizeProfileInput applies every profile rule and copies the accepted
// values onto profile.
func NormalizeProfileInput(profile *models.Profile, input ProfileInput, now time.Time) error {
	fullName := strings.TrimSpace(input.FullName)
	if length := runeLength(fullName); length < minFullNameLength || length > maxFullNameLength || !personNamePattern.MatchString(fullName) {
		return ErrProfileFullNameInvalid
	}

	phone := strings.TrimSpace(input.Phone)
	if phone != "" && !ghanaPhonePattern.MatchString(phone) {
		return ErrProfilePhoneInvalid
	}

	if input.Age != nil && (*input.Age < minProfileAge || *input.Age > maxProfileAge) {
		return ErrProfileAgeOutOfRange
	}

	location := StripMarkup(input.Location)
	if runeLength(location) > maxLocationLength {
		return ErrProfileLocationTooLong
	}

	contactName := strings.TrimSpace(input.EmergencyContactName)
	if runeLength(contactName) > maxFullNameLength || !personNamePattern.MatchString(contactName) {
		return ErrProfileEmergencyNameInvalid
	}

	contactPhone := strings.TrimSpace(input.EmergencyContactPhone)
	if contactPhone != "" && !ghanaPhonePattern.MatchString(contactPhone) {
		return ErrProfileEmergencyPhoneInvalid
	}

	if runeLength(input.MedicalConditions) > maxMedicalConditionsLength {
		return ErrProfileMedicalConditionsTooLong
	}

	var lmp *time.Time
	if raw := strings.TrimSpace(input.PregnancyLMPRaw); raw != "" {
		parsed, err := ParseDay(raw, time.UTC)
		if err != nil {
			return ErrProfilePregnancyLMPInvalid
		}
		if _, err := ComputePregnancyStatus(calendarDayUTC(now), parsed); err != nil {
			return err
		}
		lmp = &parsed
	}
	if input.IsPregnant && lmp == nil {
		return ErrProfilePregnancyLMPRequired
	}

	profile.FullName = fullName
	profile.Phone = phone
	profile.Age = input.Age
	profile.Location = location
	profile.EmergencyContactName = contactName
	profile.EmergencyContactPhone = contactPhone
	profile.MedicalConditions = StripMarkup(input.MedicalConditions)
	profile.IsPregnant = input.IsPregnant
	profile.PregnancyLMP = lmp
	if !input.IsPregnant {
		profile.PregnancyLMP = nil
	}
	return nil
}
