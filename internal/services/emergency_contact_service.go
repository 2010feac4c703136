package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

const (
	minContactNameLength         = 2
	minContactRelationshipLength = 2
	minContactPhoneLength        = 10
	maxContactFieldLength        = 200
)

var (
	ErrContactNotFound            = errors.New("emergency contact not found")
	ErrContactNameInvalid         = errors.New("name must be at least 2 characters")
	ErrContactRelationshipInvalid = errors.New("relationship is required")
	ErrContactPhoneInvalid        = errors.New("phone number must be at least 10 characters")
	ErrContactEmailInvalid        = errors.New("email is invalid")
	ErrContactPriorityOutOfRange  = errors.New("priority must be between 1 and 10")
	ErrContactFieldTooLong        = errors.New("contact field is too long")
)

type EmergencyContactRepository interface {
	ListByUser(userID uint) ([]models.EmergencyContact, error)
	FindByIDForUser(contactID uint, userID uint) (models.EmergencyContact, error)
	Save(contact *models.EmergencyContact) error
	DeleteForUser(contactID uint, userID uint) (bool, error)
}

type EmergencyContactInput struct {
	Name         string
	Relationship string
	Phone        string
	Email        string
	Address      string
	IsPrimary    bool
	Priority     *int
}

type EmergencyContactService struct {
	contacts EmergencyContactRepository
}

func NewEmergencyContactService(contacts EmergencyContactRepository) *EmergencyContactService {
	return &EmergencyContactService{contacts: contacts}
}

func (service *EmergencyContactService) List(userID uint) ([]models.EmergencyContact, error) {
	return service.contacts.ListByUser(userID)
}

func (service *EmergencyContactService) Create(userID uint, input EmergencyContactInput) (models.EmergencyContact, error) {
	contact := models.EmergencyContact{UserID: userID}
	if err := applyEmergencyContactInput(&contact, input); err != nil {
		return models.EmergencyContact{}, err
	}
	if err := service.contacts.Save(&contact); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("save contact: %w", err)
	}
	return contact, nil
}

func (service *EmergencyContactService) Update(userID uint, contactID uint, input EmergencyContactInput) (models.EmergencyContact, error) {
	contact, err := service.contacts.FindByIDForUser(contactID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EmergencyContact{}, ErrContactNotFound
	}
	if err != nil {
		return models.EmergencyContact{}, fmt.Errorf("load contact: %w", err)
	}
	if err := applyEmergencyContactInput(&contact, input); err != nil {
		return models.EmergencyContact{}, err
	}
	if err := service.contacts.Save(&contact); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("save contact: %w", err)
	}
	return contact, nil
}

func (service *EmergencyContactService) Delete(userID uint, contactID uint) error {
	deleted, err := service.contacts.DeleteForUser(contactID, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !deleted {
		return ErrContactNotFound
	}
	return nil
}

func applyEmergencyContactInput(contact *models.EmergencyContact, input EmergencyContactInput) error {
	name := StripMarkup(input.Name)
	relationship := StripMarkup(input.Relationship)
	phone := strings.TrimSpace(input.Phone)
	address := StripMarkup(input.Address)
	email := ""

	if runeLength(name) < minContactNameLength {
		return ErrContactNameInvalid
	}
	if runeLength(relationship) < minContactRelationshipLength {
		return ErrContactRelationshipInvalid
	}
	if runeLength(phone) < minContactPhoneLength {
		return ErrContactPhoneInvalid
	}
	if strings.TrimSpace(input.Email) != "" {
		email = NormalizeAuthEmail(input.Email)
		if email == "" {
			return ErrContactEmailInvalid
		}
	}
	for _, value := range []string{name, relationship, phone, address} {
		if runeLength(value) > maxContactFieldLength {
			return ErrContactFieldTooLong
		}
	}

	priority := models.DefaultContactPriority
	if input.Priority != nil {
		priority = *input.Priority
	}
	if priority < models.MinContactPriority || priority > models.MaxContactPriority {
		return ErrContactPriorityOutOfRange
	}

	contact.Name = name
	contact.Relationship = relationship
	contact.Phone = phone
	contact.Email = email
	contact.Address = address
	contact.IsPrimary = input.IsPrimary
	contact.Priority = priority
	return nil
}
