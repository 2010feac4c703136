package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type cycleSettingsRequest struct {
	CycleLength     int    `json:"cycle_length"`
	PeriodLength    int    `json:"period_length"`
	LastPeriodStart string `json:"last_period_start"`
}

type cycleSettingsResponse struct {
	CycleLength     int     `json:"cycle_length"`
	PeriodLength    int     `json:"period_length"`
	LastPeriodStart *string `json:"last_period_start"`
}

type fertileWindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type cycleSnapshotResponse struct {
	Date                    string                `json:"date"`
	CurrentCycleDay         int                   `json:"current_cycle_day"`
	Phase                   services.CyclePhase   `json:"phase"`
	PredictedNextCycleStart string                `json:"predicted_next_cycle_start"`
	OvulationDayIndex       int                   `json:"ovulation_day_index"`
	OvulationDate           string                `json:"ovulation_date"`
	DaysUntilOvulation      int                   `json:"days_until_ovulation"`
	FertileWindow           fertileWindowResponse `json:"fertile_window"`
	Stale                   bool                  `json:"stale"`
}

type cycleLogRequest struct {
	LogType     string   `json:"log_type"`
	Flow        string   `json:"flow"`
	Symptoms    []string `json:"symptoms"`
	Mood        string   `json:"mood"`
	Temperature *float64 `json:"temperature"`
	Notes       string   `json:"notes"`
}

type cycleLogResponse struct {
	Date        string   `json:"date"`
	LogType     string   `json:"log_type"`
	IsPeriod    bool     `json:"is_period"`
	Flow        string   `json:"flow"`
	Symptoms    []string `json:"symptoms"`
	Mood        string   `json:"mood,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

func (handler *Handler) GetCycleSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	settings, err := handler.cycleService.Settings(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load cycle settings")
	}
	return c.JSON(newCycleSettingsResponse(settings))
}

func (handler *Handler) UpdateCycleSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request cycleSettingsRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	settings, err := handler.cycleService.UpdateSettings(user.ID, services.CycleSettingsInput{
		CycleLength:        request.CycleLength,
		PeriodLength:       request.PeriodLength,
		LastPeriodStartRaw: request.LastPeriodStart,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update cycle settings")
	}
	return c.JSON(newCycleSettingsResponse(settings))
}

// GetCycleSnapshot evaluates the stored reference point today, or on the
// day given by ?date= in the configured time zone.
func (handler *Handler) GetCycleSnapshot(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var day *time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := services.ParseDay(raw, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = &parsed
	}

	snapshot, err := handler.cycleService.Snapshot(user.ID, day)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to compute cycle snapshot")
	}

	at := services.DateAtLocation(handler.now(), handler.location)
	if day != nil {
		at = *day
	}
	return c.JSON(cycleSnapshotResponse{
		Date:                    formatDay(at),
		CurrentCycleDay:         snapshot.CurrentCycleDay,
		Phase:                   snapshot.Phase,
		PredictedNextCycleStart: formatDay(snapshot.PredictedNextCycleStart),
		OvulationDayIndex:       snapshot.OvulationDayIndex,
		OvulationDate:           formatDay(snapshot.OvulationDate),
		DaysUntilOvulation:      snapshot.DaysUntilOvulation,
		FertileWindow: fertileWindowResponse{
			Start: formatDay(snapshot.FertileWindow.Start),
			End:   formatDay(snapshot.FertileWindow.End),
		},
		Stale: snapshot.Stale(),
	})
}

func (handler *Handler) ListCycleLogs(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	logs, err := handler.cycleService.ListLogs(user.ID, c.Query("from"), c.Query("to"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load cycle logs")
	}

	response := make([]cycleLogResponse, 0, len(logs))
	for _, entry := range logs {
		response = append(response, newCycleLogResponse(entry))
	}
	return c.JSON(response)
}

func (handler *Handler) SaveCycleLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request cycleLogRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	entry, err := handler.cycleService.SaveLog(user.ID, c.Params("date"), services.CycleLogInput{
		LogType:     request.LogType,
		Flow:        request.Flow,
		Symptoms:    request.Symptoms,
		Mood:        request.Mood,
		Temperature: request.Temperature,
		Notes:       request.Notes,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to save cycle log")
	}
	return c.JSON(newCycleLogResponse(entry))
}

func (handler *Handler) DeleteCycleLog(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.cycleService.DeleteLog(user.ID, c.Params("date")); err != nil {
		return handler.respondServiceError(c, err, "failed to delete cycle log")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func newCycleSettingsResponse(settings services.CycleSettings) cycleSettingsResponse {
	return cycleSettingsResponse{
		CycleLength:     settings.CycleLength,
		PeriodLength:    settings.PeriodLength,
		LastPeriodStart: formatOptionalDay(settings.LastPeriodStart),
	}
}

func newCycleLogResponse(entry models.CycleLog) cycleLogResponse {
	symptoms := entry.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	return cycleLogResponse{
		Date:        formatDay(entry.Date),
		LogType:     entry.LogType,
		IsPeriod:    entry.IsPeriod,
		Flow:        entry.Flow,
		Symptoms:    symptoms,
		Mood:        entry.Mood,
		Temperature: entry.Temperature,
		Notes:       entry.Notes,
	}
}
