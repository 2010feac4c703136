package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/notify"
	"gorm.io/gorm"
)

const (
	maxAlertTitleLength       = 200
	maxAlertDescriptionLength = 1000

	EmergencyAlertTitle       = "Emergency Alert Activated"
	EmergencyAlertDescription = "Emergency button was pressed. Immediate assistance may be needed."
)

var (
	ErrAlertNotFound        = errors.New("alert not found")
	ErrAlertTypeInvalid     = errors.New("alert type is invalid")
	ErrAlertSeverityInvalid = errors.New("alert severity is invalid")
	ErrAlertTitleInvalid    = errors.New("alert title must be 1 to 200 characters")
	ErrAlertDescriptionLong = errors.New("alert description is too long")
	ErrAlertFilterInvalid   = errors.New("alert status filter must be active, resolved or all")
)

var validAlertTypes = map[string]struct{}{
	models.AlertTypeEmergency:     {},
	models.AlertTypeBloodPressure: {},
	models.AlertTypeHeartRate:     {},
	models.AlertTypeTemperature:   {},
	models.AlertTypeMedication:    {},
	models.AlertTypeAppointment:   {},
}

var validAlertSeverities = map[string]struct{}{
	models.SeverityLow:      {},
	models.SeverityMedium:   {},
	models.SeverityHigh:     {},
	models.SeverityCritical: {},
}

type RiskAlertRepository interface {
	Create(alert *models.RiskAlert) error
	FindByIDForUser(alertID uint, userID uint) (models.RiskAlert, error)
	ListByUser(userID uint, filter string) ([]models.RiskAlert, error)
	MarkAcknowledged(alertID uint, at time.Time) error
	MarkResolved(alertID uint, at time.Time) error
	MarkNotificationsSent(alertID uint) error
}

type NotificationLogRepository interface {
	Create(entry *models.NotificationLog) error
}

type AlertContactLister interface {
	ListByUser(userID uint) ([]models.EmergencyContact, error)
}

type PrimaryProfessionalLookup interface {
	FindPrimaryByUser(userID uint) (models.HealthcareProfessional, error)
}

type AlertProfileLookup interface {
	FindByUserID(userID uint) (models.Profile, error)
}

type RiskAlertInput struct {
	AlertType   string
	Severity    string
	Title       string
	Description string
	Data        map[string]any
}

type DispatchSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type RiskAlertService struct {
	alerts          RiskAlertRepository
	logs            NotificationLogRepository
	contacts        AlertContactLister
	professionals   PrimaryProfessionalLookup
	profiles        AlertProfileLookup
	notifier        notify.Notifier
	emergencyNumber string
	now             func() time.Time
}

func NewRiskAlertService(
	alerts RiskAlertRepository,
	logs NotificationLogRepository,
	contacts AlertContactLister,
	professionals PrimaryProfessionalLookup,
	profiles AlertProfileLookup,
	notifier notify.Notifier,
	emergencyNumber string,
) *RiskAlertService {
	return &RiskAlertService{
		alerts:          alerts,
		logs:            logs,
		contacts:        contacts,
		professionals:   professionals,
		profiles:        profiles,
		notifier:        notifier,
		emergencyNumber: emergencyNumber,
		now:             time.Now,
	}
}

func (service *RiskAlertService) Create(userID uint, input RiskAlertInput) (models.RiskAlert, error) {
	alert, err := normalizeRiskAlertInput(input)
	if err != nil {
		return models.RiskAlert{}, err
	}
	alert.UserID = userID
	alert.TriggeredAt = service.now().UTC()

	if err := service.alerts.Create(&alert); err != nil {
		return models.RiskAlert{}, fmt.Errorf("create alert: %w", err)
	}
	return alert, nil
}

// TriggerEmergency records a critical emergency alert and notifies the
// user's contacts and primary professional, or the care team when there are
// none.
func (service *RiskAlertService) TriggerEmergency(ctx context.Context, userID uint, data map[string]any) (models.RiskAlert, DispatchSummary, error) {
	alert, err := service.Create(userID, RiskAlertInput{
		AlertType:   models.AlertTypeEmergency,
		Severity:    models.SeverityCritical,
		Title:       EmergencyAlertTitle,
		Description: EmergencyAlertDescription,
		Data:        data,
	})
	if err != nil {
		return models.RiskAlert{}, DispatchSummary{}, err
	}

	summary, err := service.Dispatch(ctx, alert)
	if err != nil {
		return alert, summary, err
	}
	if summary.Sent > 0 {
		alert.NotificationsSent = true
	}
	return alert, summary, nil
}

// Dispatch sends one message per emergency contact in priority order, then
// one to the primary healthcare professional, and records a notification log
// row for each attempt.
func (service *RiskAlertService) Dispatch(ctx context.Context, alert models.RiskAlert) (DispatchSummary, error) {
	contacts, err := service.contacts.ListByUser(alert.UserID)
	if err != nil {
		return DispatchSummary{}, fmt.Errorf("list emergency contacts: %w", err)
	}
	professional, hasProfessional, err := service.primaryProfessional(alert.UserID)
	if err != nil {
		return DispatchSummary{}, err
	}
	patient := service.patientLabel(alert.UserID)

	summary := DispatchSummary{}
	if len(contacts) == 0 && !hasProfessional {
		message := service.alertMessage(alert, patient, "Care team")
		if err := service.deliver(ctx, alert.ID, models.RecipientTypeCareTeam, 0, message, &summary); err != nil {
			return summary, err
		}
	}
	for _, contact := range contacts {
		recipient := fmt.Sprintf("%s (%s) %s", contact.Name, contact.Relationship, contact.Phone)
		message := service.alertMessage(alert, patient, recipient)
		if err := service.deliver(ctx, alert.ID, models.RecipientTypeContact, contact.ID, message, &summary); err != nil {
			return summary, err
		}
	}
	if hasProfessional {
		recipient := fmt.Sprintf("%s (%s) %s", professional.Name, professional.Specialization, professional.AlertPhone())
		message := service.alertMessage(alert, patient, recipient)
		if err := service.deliver(ctx, alert.ID, models.RecipientTypeProfessional, professional.ID, message, &summary); err != nil {
			return summary, err
		}
	}

	if summary.Sent > 0 {
		if err := service.alerts.MarkNotificationsSent(alert.ID); err != nil {
			return summary, fmt.Errorf("mark notifications sent: %w", err)
		}
	}
	return summary, nil
}

func (service *RiskAlertService) primaryProfessional(userID uint) (models.HealthcareProfessional, bool, error) {
	if service.professionals == nil {
		return models.HealthcareProfessional{}, false, nil
	}
	professional, err := service.professionals.FindPrimaryByUser(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.HealthcareProfessional{}, false, nil
	}
	if err != nil {
		return models.HealthcareProfessional{}, false, fmt.Errorf("load primary professional: %w", err)
	}
	return professional, true, nil
}

func (service *RiskAlertService) deliver(ctx context.Context, alertID uint, recipientType string, recipientID uint, message notify.Message, summary *DispatchSummary) error {
	entry := models.NotificationLog{
		AlertID:       alertID,
		RecipientType: recipientType,
		RecipientID:   recipientID,
		Method:        service.notifier.Method(),
		Status:        models.NotificationStatusSent,
	}
	if err := service.notifier.Notify(ctx, message); err != nil {
		entry.Status = models.NotificationStatusFailed
		entry.ErrorMessage = err.Error()
		summary.Failed++
	} else {
		sentAt := service.now().UTC()
		entry.SentAt = &sentAt
		summary.Sent++
	}

	if err := service.logs.Create(&entry); err != nil {
		return fmt.Errorf("record notification log: %w", err)
	}
	return nil
}

func (service *RiskAlertService) alertMessage(alert models.RiskAlert, patient string, recipient string) notify.Message {
	lines := []string{alert.Description}
	if patient != "" {
		lines = append(lines, "Patient: "+patient)
	}
	lines = append(lines, "Triggered: "+alert.TriggeredAt.Format(time.RFC3339))
	if service.emergencyNumber != "" {
		lines = append(lines, "If there is immediate danger call "+service.emergencyNumber+".")
	}
	return notify.Message{
		Kind:      notify.KindAlert,
		Recipient: recipient,
		Subject:   fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Severity), alert.Title),
		Body:      strings.Join(lines, "\n"),
	}
}

func (service *RiskAlertService) patientLabel(userID uint) string {
	if service.profiles == nil {
		return ""
	}
	profile, err := service.profiles.FindByUserID(userID)
	if err != nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if profile.FullName != "" {
		parts = append(parts, profile.FullName)
	}
	if profile.Phone != "" {
		parts = append(parts, profile.Phone)
	}
	return strings.Join(parts, ", ")
}

func (service *RiskAlertService) List(userID uint, status string) ([]models.RiskAlert, error) {
	filter := strings.ToLower(strings.TrimSpace(status))
	switch filter {
	case "":
		filter = db.AlertFilterAll
	case db.AlertFilterActive, db.AlertFilterResolved, db.AlertFilterAll:
	default:
		return nil, ErrAlertFilterInvalid
	}
	return service.alerts.ListByUser(userID, filter)
}

// Acknowledge and Resolve set their timestamp once; repeating the call
// returns the alert unchanged.
func (service *RiskAlertService) Acknowledge(userID uint, alertID uint) (models.RiskAlert, error) {
	return service.mark(userID, alertID, service.alerts.MarkAcknowledged)
}

func (service *RiskAlertService) Resolve(userID uint, alertID uint) (models.RiskAlert, error) {
	return service.mark(userID, alertID, service.alerts.MarkResolved)
}

func (service *RiskAlertService) mark(userID uint, alertID uint, apply func(uint, time.Time) error) (models.RiskAlert, error) {
	if _, err := service.find(userID, alertID); err != nil {
		return models.RiskAlert{}, err
	}
	if err := apply(alertID, service.now().UTC()); err != nil {
		return models.RiskAlert{}, fmt.Errorf("update alert: %w", err)
	}
	return service.find(userID, alertID)
}

func (service *RiskAlertService) find(userID uint, alertID uint) (models.RiskAlert, error) {
	alert, err := service.alerts.FindByIDForUser(alertID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RiskAlert{}, ErrAlertNotFound
	}
	if err != nil {
		return models.RiskAlert{}, fmt.Errorf("load alert: %w", err)
	}
	return alert, nil
}

func normalizeRiskAlertInput(input RiskAlertInput) (models.RiskAlert, error) {
	alertType := strings.ToLower(strings.TrimSpace(input.AlertType))
	if _, ok := validAlertTypes[alertType]; !ok {
		return models.RiskAlert{}, ErrAlertTypeInvalid
	}
	severity := strings.ToLower(strings.TrimSpace(input.Severity))
	if _, ok := validAlertSeverities[severity]; !ok {
		return models.RiskAlert{}, ErrAlertSeverityInvalid
	}
	title := StripMarkup(input.Title)
	if length := runeLength(title); length == 0 || length > maxAlertTitleLength {
		return models.RiskAlert{}, ErrAlertTitleInvalid
	}
	description := StripMarkup(input.Description)
	if runeLength(description) > maxAlertDescriptionLength {
		return models.RiskAlert{}, ErrAlertDescriptionLong
	}

	return models.RiskAlert{
		AlertType:   alertType,
		Severity:    severity,
		Title:       title,
		Description: description,
		Data:        input.Data,
	}, nil
}
