package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/nyinsen/internal/content"
	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

const (
	minProfessionalNameLength           = 2
	minProfessionalSpecializationLength = 2
	minProfessionalPhoneLength          = 10
	maxProfessionalFieldLength          = 200
	maxProfessionalNotesLength          = 1000
)

var (
	ErrProfessionalNotFound              = errors.New("healthcare professional not found")
	ErrProfessionalNameInvalid           = errors.New("name must be at least 2 characters")
	ErrProfessionalSpecializationInvalid = errors.New("specialization is required")
	ErrProfessionalPhoneInvalid          = errors.New("phone number must be at least 10 characters")
	ErrProfessionalEmergencyPhoneInvalid = errors.New("emergency phone must be at least 10 characters")
	ErrProfessionalEmailInvalid          = errors.New("email is invalid")
	ErrProfessionalFacilityUnknown       = errors.New("facility is unknown")
	ErrProfessionalFieldTooLong          = errors.New("professional field is too long")
	ErrProfessionalNotesTooLong          = errors.New("notes must be at most 1000 characters")
)

// Specializations offered to clients picking a professional. Other values
// are accepted.
var Specializations = []string{
	"Obstetrician/Gynecologist",
	"Midwife",
	"General Practitioner",
	"Pediatrician",
	"Cardiologist",
	"Endocrinologist",
	"Psychiatrist",
	"Nutritionist",
	"Physiotherapist",
	"Other",
}

type HealthcareProfessionalRepository interface {
	ListByUser(userID uint) ([]models.HealthcareProfessional, error)
	FindByIDForUser(professionalID uint, userID uint) (models.HealthcareProfessional, error)
	Save(professional *models.HealthcareProfessional) error
	DeleteForUser(professionalID uint, userID uint) (bool, error)
}

type FacilityLookup interface {
	FacilityByID(id string) (content.Facility, bool)
}

type HealthcareProfessionalInput struct {
	Name           string
	Specialization string
	Phone          string
	Email          string
	EmergencyPhone string
	LicenseNumber  string
	Notes          string
	FacilityID     string
	IsPrimary      bool
}

type HealthcareProfessionalService struct {
	professionals HealthcareProfessionalRepository
	facilities    FacilityLookup
}

func NewHealthcareProfessionalService(professionals HealthcareProfessionalRepository, facilities FacilityLookup) *HealthcareProfessionalService {
	return &HealthcareProfessionalService{professionals: professionals, facilities: facilities}
}

func (service *HealthcareProfessionalService) List(userID uint) ([]models.HealthcareProfessional, error) {
	return service.professionals.ListByUser(userID)
}

func (service *HealthcareProfessionalService) Create(userID uint, input HealthcareProfessionalInput) (models.HealthcareProfessional, error) {
	professional := models.HealthcareProfessional{UserID: userID}
	if err := service.apply(&professional, input); err != nil {
		return models.HealthcareProfessional{}, err
	}
	if err := service.professionals.Save(&professional); err != nil {
		return models.HealthcareProfessional{}, fmt.Errorf("save professional: %w", err)
	}
	return professional, nil
}

func (service *HealthcareProfessionalService) Update(userID uint, professionalID uint, input HealthcareProfessionalInput) (models.HealthcareProfessional, error) {
	professional, err := service.professionals.FindByIDForUser(professionalID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HealthcareProfessional{}, ErrProfessionalNotFound
	}
	if err != nil {
		return models.HealthcareProfessional{}, fmt.Errorf("load professional: %w", err)
	}
	if err := service.apply(&professional, input); err != nil {
		return models.HealthcareProfessional{}, err
	}
	if err := service.professionals.Save(&professional); err != nil {
		return models.HealthcareProfessional{}, fmt.Errorf("save professional: %w", err)
	}
	return professional, nil
}

func (service *HealthcareProfessionalService) Delete(userID uint, professionalID uint) error {
	deleted, err := service.professionals.DeleteForUser(professionalID, userID)
	if err != nil {
		return fmt.Errorf("delete professional: %w", err)
	}
	if !deleted {
		return ErrProfessionalNotFound
	}
	return nil
}

func (service *HealthcareProfessionalService) apply(professional *models.HealthcareProfessional, input HealthcareProfessionalInput) error {
	name := StripMarkup(input.Name)
	specialization := StripMarkup(input.Specialization)
	phone := strings.TrimSpace(input.Phone)
	emergencyPhone := strings.TrimSpace(input.EmergencyPhone)
	license := StripMarkup(input.LicenseNumber)
	notes := StripMarkup(input.Notes)
	facilityID := strings.TrimSpace(input.FacilityID)
	email := ""

	if runeLength(name) < minProfessionalNameLength {
		return ErrProfessionalNameInvalid
	}
	if runeLength(specialization) < minProfessionalSpecializationLength {
		return ErrProfessionalSpecializationInvalid
	}
	if runeLength(phone) < minProfessionalPhoneLength {
		return ErrProfessionalPhoneInvalid
	}
	if emergencyPhone != "" && runeLength(emergencyPhone) < minProfessionalPhoneLength {
		return ErrProfessionalEmergencyPhoneInvalid
	}
	if strings.TrimSpace(input.Email) != "" {
		email = NormalizeAuthEmail(input.Email)
		if email == "" {
			return ErrProfessionalEmailInvalid
		}
	}
	for _, value := range []string{name, specialization, phone, emergencyPhone, license} {
		if runeLength(value) > maxProfessionalFieldLength {
			return ErrProfessionalFieldTooLong
		}
	}
	if runeLength(notes) > maxProfessionalNotesLength {
		return ErrProfessionalNotesTooLong
	}
	if facilityID != "" {
		if service.facilities == nil {
			return ErrProfessionalFacilityUnknown
		}
		if _, ok := service.facilities.FacilityByID(facilityID); !ok {
			return ErrProfessionalFacilityUnknown
		}
	}

	professional.Name = name
	professional.Specialization = specialization
	professional.Phone = phone
	professional.Email = email
	professional.EmergencyPhone = emergencyPhone
	professional.LicenseNumber = license
	professional.Notes = notes
	professional.FacilityID = facilityID
	professional.IsPrimary = input.IsPrimary
	return nil
}
