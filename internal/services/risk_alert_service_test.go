package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/notify"
)

type capturingNotifier struct {
	messages []notify.Message
	failFor  string
}

func (notifier *capturingNotifier) Notify(_ context.Context, message notify.Message) error {
	notifier.messages = append(notifier.messages, message)
	if notifier.failFor != "" && strings.Contains(message.Recipient, notifier.failFor) {
		return errors.New("delivery refused")
	}
	return nil
}

func (notifier *capturingNotifier) Method() string {
	return "capture"
}

func newRiskAlertServiceForTest(t *testing.T, notifier notify.Notifier) (*RiskAlertService, *db.Repositories, models.User) {
	t.Helper()

	repos := openRepositoriesForServiceTest(t)
	user := createUserForServiceTest(t, repos, "alerts@example.com")
	service := NewRiskAlertService(repos.RiskAlerts, repos.NotificationLogs, repos.EmergencyContacts, repos.HealthcareProfessionals, repos.Profiles, notifier, "999")
	service.now = func() time.Time { return time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC) }
	return service, repos, user
}

func TestRiskAlertInputValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   RiskAlertInput
		wantErr error
	}{
		{name: "unknown type", input: RiskAlertInput{AlertType: "weather", Severity: "low", Title: "x"}, wantErr: ErrAlertTypeInvalid},
		{name: "unknown severity", input: RiskAlertInput{AlertType: "heart_rate", Severity: "urgent", Title: "x"}, wantErr: ErrAlertSeverityInvalid},
		{name: "empty title", input: RiskAlertInput{AlertType: "heart_rate", Severity: "low", Title: "<b></b>"}, wantErr: ErrAlertTitleInvalid},
		{name: "long title", input: RiskAlertInput{AlertType: "heart_rate", Severity: "low", Title: strings.Repeat("t", 201)}, wantErr: ErrAlertTitleInvalid},
		{name: "long description", input: RiskAlertInput{AlertType: "heart_rate", Severity: "low", Title: "t", Description: strings.Repeat("d", 1001)}, wantErr: ErrAlertDescriptionLong},
		{name: "valid mixed case", input: RiskAlertInput{AlertType: "Blood_Pressure", Severity: "HIGH", Title: " BP 160/110 "}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			alert, err := normalizeRiskAlertInput(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && (alert.AlertType != "blood_pressure" || alert.Severity != "high" || alert.Title != "BP 160/110") {
				t.Fatalf("unexpected normalized alert: %#v", alert)
			}
		})
	}
}

func TestRiskAlertEmergencyNotifiesContactsInPriorityOrder(t *testing.T) {
	notifier := &capturingNotifier{failFor: "Kofi"}
	service, repos, user := newRiskAlertServiceForTest(t, notifier)

	profile, err := repos.Profiles.FindByUserID(user.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	profile.FullName = "Akosua Mensah"
	if err := repos.Profiles.Save(&profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	for _, contact := range []models.EmergencyContact{
		{UserID: user.ID, Name: "Kofi", Relationship: "brother", Phone: "+233201111111", Priority: 2},
		{UserID: user.ID, Name: "Ama", Relationship: "sister", Phone: "+233202222222", Priority: 1, IsPrimary: true},
	} {
		contact := contact
		if err := repos.EmergencyContacts.Save(&contact); err != nil {
			t.Fatalf("save contact: %v", err)
		}
	}

	alert, summary, err := service.TriggerEmergency(context.Background(), user.ID, map[string]any{"source": "button"})
	if err != nil {
		t.Fatalf("TriggerEmergency() unexpected error: %v", err)
	}
	if alert.AlertType != models.AlertTypeEmergency || alert.Severity != models.SeverityCritical || alert.Title != EmergencyAlertTitle {
		t.Fatalf("unexpected alert: %#v", alert)
	}
	if summary.Sent != 1 || summary.Failed != 1 {
		t.Fatalf("expected 1 sent and 1 failed, got %#v", summary)
	}
	if !alert.NotificationsSent {
		t.Fatal("expected notifications_sent to be set")
	}

	if len(notifier.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(notifier.messages))
	}
	if !strings.HasPrefix(notifier.messages[0].Recipient, "Ama") {
		t.Fatalf("expected priority 1 contact first, got %q", notifier.messages[0].Recipient)
	}
	body := notifier.messages[0].Body
	for _, fragment := range []string{EmergencyAlertDescription, "Patient: Akosua Mensah", "call 999"} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected body to contain %q, got %q", fragment, body)
		}
	}
	if notifier.messages[0].Subject != "[CRITICAL] Emergency Alert Activated" {
		t.Fatalf("unexpected subject %q", notifier.messages[0].Subject)
	}

	logs, err := repos.NotificationLogs.ListByAlert(alert.ID)
	if err != nil {
		t.Fatalf("list notification logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 notification logs, got %d", len(logs))
	}
	statuses := map[string]int{}
	for _, entry := range logs {
		statuses[entry.Status]++
		if entry.RecipientType != models.RecipientTypeContact || entry.Method != "capture" {
			t.Fatalf("unexpected log entry: %#v", entry)
		}
		if entry.Status == models.NotificationStatusFailed && entry.ErrorMessage != "delivery refused" {
			t.Fatalf("expected failure reason on log, got %q", entry.ErrorMessage)
		}
	}
	if statuses[models.NotificationStatusSent] != 1 || statuses[models.NotificationStatusFailed] != 1 {
		t.Fatalf("unexpected status counts: %#v", statuses)
	}

	stored, err := repos.RiskAlerts.FindByIDForUser(alert.ID, user.ID)
	if err != nil {
		t.Fatalf("reload alert: %v", err)
	}
	if !stored.NotificationsSent {
		t.Fatal("expected stored notifications_sent")
	}
}

func TestRiskAlertEmergencyWithoutContactsNotifiesCareTeam(t *testing.T) {
	notifier := &capturingNotifier{}
	service, repos, user := newRiskAlertServiceForTest(t, notifier)

	alert, summary, err := service.TriggerEmergency(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("TriggerEmergency() unexpected error: %v", err)
	}
	if summary.Sent != 1 || len(notifier.messages) != 1 {
		t.Fatalf("expected a single care-team message, got %#v / %d", summary, len(notifier.messages))
	}
	if notifier.messages[0].Recipient != "Care team" {
		t.Fatalf("unexpected recipient %q", notifier.messages[0].Recipient)
	}

	logs, err := repos.NotificationLogs.ListByAlert(alert.ID)
	if err != nil {
		t.Fatalf("list notification logs: %v", err)
	}
	if len(logs) != 1 || logs[0].RecipientType != models.RecipientTypeCareTeam || logs[0].SentAt == nil {
		t.Fatalf("unexpected care-team log: %#v", logs)
	}
}

func TestRiskAlertEmergencyNotifiesPrimaryProfessionalAfterContacts(t *testing.T) {
	notifier := &capturingNotifier{}
	service, repos, user := newRiskAlertServiceForTest(t, notifier)

	contact := models.EmergencyContact{UserID: user.ID, Name: "Ama", Relationship: "sister", Phone: "+233202222222", Priority: 1}
	if err := repos.EmergencyContacts.Save(&contact); err != nil {
		t.Fatalf("save contact: %v", err)
	}
	for _, professional := range []models.HealthcareProfessional{
		{UserID: user.ID, Name: "Adjoa", Specialization: "Nurse", Phone: "+233203333333"},
		{UserID: user.ID, Name: "Dr. Owusu", Specialization: "Midwife", Phone: "+233204444444", EmergencyPhone: "+233205555555", IsPrimary: true},
	} {
		professional := professional
		if err := repos.HealthcareProfessionals.Save(&professional); err != nil {
			t.Fatalf("save professional: %v", err)
		}
	}

	alert, summary, err := service.TriggerEmergency(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("TriggerEmergency() unexpected error: %v", err)
	}
	if summary.Sent != 2 || len(notifier.messages) != 2 {
		t.Fatalf("expected contact and professional messages, got %#v / %d", summary, len(notifier.messages))
	}
	if notifier.messages[1].Recipient != "Dr. Owusu (Midwife) +233205555555" {
		t.Fatalf("expected primary professional on emergency phone, got %q", notifier.messages[1].Recipient)
	}

	logs, err := repos.NotificationLogs.ListByAlert(alert.ID)
	if err != nil {
		t.Fatalf("list notification logs: %v", err)
	}
	types := map[string]int{}
	for _, entry := range logs {
		types[entry.RecipientType]++
	}
	if types[models.RecipientTypeContact] != 1 || types[models.RecipientTypeProfessional] != 1 || types[models.RecipientTypeCareTeam] != 0 {
		t.Fatalf("unexpected recipient types: %#v", types)
	}
}

func TestRiskAlertEmergencyWithOnlyProfessionalSkipsCareTeam(t *testing.T) {
	notifier := &capturingNotifier{}
	service, repos, user := newRiskAlertServiceForTest(t, notifier)

	professional := models.HealthcareProfessional{UserID: user.ID, Name: "Dr. Owusu", Specialization: "Midwife", Phone: "+233204444444", IsPrimary: true}
	if err := repos.HealthcareProfessionals.Save(&professional); err != nil {
		t.Fatalf("save professional: %v", err)
	}

	if _, _, err := service.TriggerEmergency(context.Background(), user.ID, nil); err != nil {
		t.Fatalf("TriggerEmergency() unexpected error: %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Recipient != "Dr. Owusu (Midwife) +233204444444" {
		t.Fatalf("expected only the professional to be notified, got %#v", notifier.messages)
	}
}

func TestRiskAlertEmergencyAllDeliveriesFailed(t *testing.T) {
	notifier := &capturingNotifier{failFor: "Care"}
	service, repos, user := newRiskAlertServiceForTest(t, notifier)

	alert, summary, err := service.TriggerEmergency(context.Background(), user.ID, nil)
	if err != nil {
		t.Fatalf("TriggerEmergency() unexpected error: %v", err)
	}
	if summary.Failed != 1 || alert.NotificationsSent {
		t.Fatalf("expected failed delivery without notifications_sent, got %#v / %v", summary, alert.NotificationsSent)
	}
	stored, err := repos.RiskAlerts.FindByIDForUser(alert.ID, user.ID)
	if err != nil {
		t.Fatalf("reload alert: %v", err)
	}
	if stored.NotificationsSent {
		t.Fatal("notifications_sent must stay false when nothing was delivered")
	}
}

func TestRiskAlertAcknowledgeAndResolveAreIdempotent(t *testing.T) {
	service, repos, user := newRiskAlertServiceForTest(t, &capturingNotifier{})
	other := createUserForServiceTest(t, repos, "other@example.com")

	alert, err := service.Create(user.ID, RiskAlertInput{AlertType: "temperature", Severity: "medium", Title: "Fever 38.5"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	resolved, err := service.Resolve(user.ID, alert.ID)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if resolved.ResolvedAt == nil || resolved.AcknowledgedAt != nil {
		t.Fatalf("resolve must not require acknowledge: %#v", resolved)
	}
	firstResolvedAt := *resolved.ResolvedAt

	service.now = func() time.Time { return time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC) }
	again, err := service.Resolve(user.ID, alert.ID)
	if err != nil {
		t.Fatalf("second Resolve() unexpected error: %v", err)
	}
	if !again.ResolvedAt.Equal(firstResolvedAt) {
		t.Fatalf("resolved_at changed from %s to %s", firstResolvedAt, again.ResolvedAt)
	}

	acknowledged, err := service.Acknowledge(user.ID, alert.ID)
	if err != nil {
		t.Fatalf("Acknowledge() unexpected error: %v", err)
	}
	if acknowledged.AcknowledgedAt == nil {
		t.Fatal("expected acknowledged_at")
	}

	if _, err := service.Acknowledge(other.ID, alert.ID); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound for another user, got %v", err)
	}
}

func TestRiskAlertListFilters(t *testing.T) {
	service, _, user := newRiskAlertServiceForTest(t, &capturingNotifier{})

	open, err := service.Create(user.ID, RiskAlertInput{AlertType: "medication", Severity: "low", Title: "Missed iron tablet"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	closed, err := service.Create(user.ID, RiskAlertInput{AlertType: "appointment", Severity: "low", Title: "Antenatal visit"})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if _, err := service.Resolve(user.ID, closed.ID); err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	tests := []struct {
		status string
		want   []uint
	}{
		{status: "", want: []uint{closed.ID, open.ID}},
		{status: "all", want: []uint{closed.ID, open.ID}},
		{status: "Active", want: []uint{open.ID}},
		{status: "resolved", want: []uint{closed.ID}},
	}
	for _, tc := range tests {
		alerts, err := service.List(user.ID, tc.status)
		if err != nil {
			t.Fatalf("List(%q) unexpected error: %v", tc.status, err)
		}
		if len(alerts) != len(tc.want) {
			t.Fatalf("List(%q) expected %d alerts, got %d", tc.status, len(tc.want), len(alerts))
		}
		for i, id := range tc.want {
			if alerts[i].ID != id {
				t.Fatalf("List(%q)[%d] expected id %d, got %d", tc.status, i, id, alerts[i].ID)
			}
		}
	}

	if _, err := service.List(user.ID, "archived"); !errors.Is(err, ErrAlertFilterInvalid) {
		t.Fatalf("expected ErrAlertFilterInvalid, got %v", err)
	}
}
