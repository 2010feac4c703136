package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/terraincognita07/nyinsen/internal/services"
)

func TestCycleSettingsRoundTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "cycle@example.com")

	payload := env.expectStatus(t, http.MethodGet, "/api/cycle/settings", token, nil, http.StatusOK)
	var settings cycleSettingsResponse
	decodeJSON(t, payload, &settings)
	if settings.CycleLength != 28 || settings.PeriodLength != 5 || settings.LastPeriodStart != nil {
		t.Fatalf("unexpected default settings: %s", payload)
	}

	start := daysAgo(10)
	env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, fiber.Map{
		"cycle_length":      30,
		"period_length":     4,
		"last_period_start": start,
	}, http.StatusOK)

	payload = env.expectStatus(t, http.MethodGet, "/api/cycle/settings", token, nil, http.StatusOK)
	decodeJSON(t, payload, &settings)
	if settings.CycleLength != 30 || settings.PeriodLength != 4 {
		t.Fatalf("expected stored lengths 30/4, got %s", payload)
	}
	if settings.LastPeriodStart == nil || *settings.LastPeriodStart != start {
		t.Fatalf("expected last period start %s, got %s", start, payload)
	}
}

func TestCycleSettingsValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "cycle-invalid@example.com")

	tests := []struct {
		name string
		body fiber.Map
		want error
	}{
		{name: "cycle too short", body: fiber.Map{"cycle_length": 10, "period_length": 5}, want: services.ErrCycleLengthOutOfRange},
		{name: "period too long", body: fiber.Map{"cycle_length": 28, "period_length": 20}, want: services.ErrPeriodLengthOutOfRange},
		{name: "bad date", body: fiber.Map{"cycle_length": 28, "period_length": 5, "last_period_start": "01/02/2024"}, want: services.ErrCycleStartDateInvalid},
		{name: "future date", body: fiber.Map{"cycle_length": 28, "period_length": 5, "last_period_start": daysAgo(-3)}, want: services.ErrCycleStartInFuture},
	}

	for _, tt := range tests {
		payload := env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, tt.body, http.StatusBadRequest)
		if got := readAPIError(t, payload); got != tt.want.Error() {
			t.Fatalf("%s: expected error %q, got %q", tt.name, tt.want.Error(), got)
		}
	}
}

func TestCycleSnapshotOnRequestedDate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "snapshot@example.com")
	env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, fiber.Map{
		"cycle_length":      28,
		"period_length":     5,
		"last_period_start": "2024-01-01",
	}, http.StatusOK)

	payload := env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot?date=2024-01-15", token, nil, http.StatusOK)
	var got cycleSnapshotResponse
	decodeJSON(t, payload, &got)

	want := cycleSnapshotResponse{
		Date:                    "2024-01-15",
		CurrentCycleDay:         15,
		Phase:                   services.PhaseOvulatory,
		PredictedNextCycleStart: "2024-01-29",
		OvulationDayIndex:       14,
		OvulationDate:           "2024-01-15",
		DaysUntilOvulation:      -1,
		FertileWindow:           fertileWindowResponse{Start: "2024-01-10", End: "2024-01-15"},
		Stale:                   false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	payload = env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot?date=2024-03-01", token, nil, http.StatusOK)
	decodeJSON(t, payload, &got)
	if !got.Stale || got.CurrentCycleDay != 61 {
		t.Fatalf("expected stale snapshot on cycle day 61, got %s", payload)
	}
}

func TestCycleSnapshotErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "snapshot-missing@example.com")

	payload := env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot", token, nil, http.StatusConflict)
	if readAPIError(t, payload) != services.ErrCycleReferenceMissing.Error() {
		t.Fatalf("expected missing reference error, got %s", payload)
	}

	env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot?date=2024-13-01", token, nil, http.StatusBadRequest)
}

func TestCycleSnapshotStoredZeroLengthIsUnprocessable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	email := "snapshot-zero@example.com"
	token := env.registerUser(t, email)
	env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, fiber.Map{
		"cycle_length":      28,
		"period_length":     5,
		"last_period_start": daysAgo(4),
	}, http.StatusOK)

	if err := env.database.Exec("UPDATE users SET cycle_length = 0 WHERE email = ?", email).Error; err != nil {
		t.Fatalf("store zero cycle length: %v", err)
	}

	payload := env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot", token, nil, http.StatusUnprocessableEntity)
	if readAPIError(t, payload) != services.ErrInvalidCycleLength.Error() {
		t.Fatalf("expected invalid cycle length error, got %s", payload)
	}
}

func TestCycleSnapshotDefaultsToToday(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "snapshot-today@example.com")
	env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, fiber.Map{
		"cycle_length":      28,
		"period_length":     5,
		"last_period_start": daysAgo(2),
	}, http.StatusOK)

	payload := env.expectStatus(t, http.MethodGet, "/api/cycle/snapshot", token, nil, http.StatusOK)
	var got cycleSnapshotResponse
	decodeJSON(t, payload, &got)
	if got.CurrentCycleDay != 3 || got.Phase != services.PhaseMenstrual || got.Stale {
		t.Fatalf("expected fresh menstrual snapshot on day 3, got %s", payload)
	}
	if got.Date != daysAgo(0) {
		t.Fatalf("expected snapshot date %s, got %s", daysAgo(0), got.Date)
	}
}

func TestCycleLogsLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "logs@example.com")
	env.expectStatus(t, http.MethodPut, "/api/cycle/settings", token, fiber.Map{
		"cycle_length":      28,
		"period_length":     5,
		"last_period_start": daysAgo(30),
	}, http.StatusOK)

	periodDay := daysAgo(1)
	payload := env.expectStatus(t, http.MethodPut, "/api/cycle/logs/"+periodDay, token, fiber.Map{
		"log_type": "period",
		"flow":     "Medium",
		"symptoms": []string{"cramps", "CRAMPS", "headache"},
		"notes":    "<b>rough</b> day",
	}, http.StatusOK)

	var entry cycleLogResponse
	decodeJSON(t, payload, &entry)
	if !entry.IsPeriod || entry.Flow != "medium" {
		t.Fatalf("expected medium period log, got %s", payload)
	}
	if diff := cmp.Diff([]string{"cramps", "headache"}, entry.Symptoms); diff != "" {
		t.Fatalf("symptoms mismatch (-want +got):\n%s", diff)
	}

	payload = env.expectStatus(t, http.MethodGet, "/api/cycle/settings", token, nil, http.StatusOK)
	var settings cycleSettingsResponse
	decodeJSON(t, payload, &settings)
	if settings.LastPeriodStart == nil || *settings.LastPeriodStart != periodDay {
		t.Fatalf("expected period log to move cycle start to %s, got %s", periodDay, payload)
	}

	payload = env.expectStatus(t, http.MethodGet, "/api/cycle/logs", token, nil, http.StatusOK)
	var listed []cycleLogResponse
	decodeJSON(t, payload, &listed)
	if len(listed) != 1 || listed[0].Date != periodDay {
		t.Fatalf("expected one listed log on %s, got %s", periodDay, payload)
	}

	env.expectStatus(t, http.MethodDelete, "/api/cycle/logs/"+periodDay, token, nil, http.StatusNoContent)
	env.expectStatus(t, http.MethodDelete, "/api/cycle/logs/"+periodDay, token, nil, http.StatusNotFound)
}

func TestCycleLogValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.registerUser(t, "logs-invalid@example.com")

	tests := []struct {
		name string
		day  string
		body fiber.Map
		want error
	}{
		{name: "future day", day: daysAgo(-2), body: fiber.Map{"log_type": "mood", "mood": "happy"}, want: services.ErrCycleLogDateInFuture},
		{name: "unknown type", day: daysAgo(1), body: fiber.Map{"log_type": "sleep"}, want: services.ErrCycleLogTypeInvalid},
		{name: "unknown symptom", day: daysAgo(1), body: fiber.Map{"log_type": "symptoms", "symptoms": []string{"zombie"}}, want: services.ErrCycleLogSymptomUnknown},
		{name: "temperature", day: daysAgo(1), body: fiber.Map{"log_type": "temperature", "temperature": 50.5}, want: services.ErrCycleLogTemperatureOutOfRange},
	}

	for _, tt := range tests {
		payload := env.expectStatus(t, http.MethodPut, "/api/cycle/logs/"+tt.day, token, tt.body, http.StatusBadRequest)
		if got := readAPIError(t, payload); got != tt.want.Error() {
			t.Fatalf("%s: expected error %q, got %q", tt.name, tt.want.Error(), got)
		}
	}

	env.expectStatus(t, http.MethodGet, "/api/cycle/logs?from=2024-02-01&to=2024-01-01", token, nil, http.StatusBadRequest)
}
