package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type alertRequest struct {
	AlertType   string         `json:"alert_type"`
	Severity    string         `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

type emergencyRequest struct {
	Data map[string]any `json:"data"`
}

type emergencyResponse struct {
	Alert           models.RiskAlert         `json:"alert"`
	Notifications   services.DispatchSummary `json:"notifications"`
	EmergencyNumber string                   `json:"emergency_number"`
}

func (handler *Handler) ListAlerts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.alertService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "alerts are not configured")
	}

	alerts, err := handler.alertService.List(user.ID, c.Query("status"))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load alerts")
	}
	return c.JSON(alerts)
}

func (handler *Handler) CreateAlert(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.alertService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "alerts are not configured")
	}

	var request alertRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	alert, err := handler.alertService.Create(user.ID, services.RiskAlertInput{
		AlertType:   request.AlertType,
		Severity:    request.Severity,
		Title:       request.Title,
		Description: request.Description,
		Data:        request.Data,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create alert")
	}
	return c.Status(fiber.StatusCreated).JSON(alert)
}

// TriggerEmergency accepts an empty body; location or vitals may be sent
// under data.
func (handler *Handler) TriggerEmergency(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.alertService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "alerts are not configured")
	}

	var request emergencyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	alert, summary, err := handler.alertService.TriggerEmergency(c.UserContext(), user.ID, request.Data)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to trigger emergency alert")
	}
	return c.Status(fiber.StatusCreated).JSON(emergencyResponse{
		Alert:           alert,
		Notifications:   summary,
		EmergencyNumber: handler.catalog.EmergencyNumber,
	})
}

func (handler *Handler) AcknowledgeAlert(c *fiber.Ctx) error {
	return handler.markAlert(c, "failed to acknowledge alert", (*services.RiskAlertService).Acknowledge)
}

func (handler *Handler) ResolveAlert(c *fiber.Ctx) error {
	return handler.markAlert(c, "failed to resolve alert", (*services.RiskAlertService).Resolve)
}

func (handler *Handler) markAlert(c *fiber.Ctx, failure string, mark func(*services.RiskAlertService, uint, uint) (models.RiskAlert, error)) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.alertService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "alerts are not configured")
	}
	alertID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid alert id")
	}

	alert, err := mark(handler.alertService, user.ID, alertID)
	if err != nil {
		return handler.respondServiceError(c, err, failure)
	}
	return c.JSON(alert)
}
