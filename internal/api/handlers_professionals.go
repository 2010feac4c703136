package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type professionalRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	EmergencyPhone string `json:"emergency_phone"`
	LicenseNumber  string `json:"license_number"`
	Notes          string `json:"notes"`
	FacilityID     string `json:"facility_id"`
	IsPrimary      bool   `json:"is_primary"`
}

func (request professionalRequest) input() services.HealthcareProfessionalInput {
	return services.HealthcareProfessionalInput{
		Name:           request.Name,
		Specialization: request.Specialization,
		Phone:          request.Phone,
		Email:          request.Email,
		EmergencyPhone: request.EmergencyPhone,
		LicenseNumber:  request.LicenseNumber,
		Notes:          request.Notes,
		FacilityID:     request.FacilityID,
		IsPrimary:      request.IsPrimary,
	}
}

func (handler *Handler) ProfessionalSpecializations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"specializations": services.Specializations})
}

func (handler *Handler) ListProfessionals(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	professionals, err := handler.professionalService.List(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load professionals")
	}
	return c.JSON(professionals)
}

func (handler *Handler) CreateProfessional(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request professionalRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	professional, err := handler.professionalService.Create(user.ID, request.input())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create professional")
	}
	return c.Status(fiber.StatusCreated).JSON(professional)
}

func (handler *Handler) UpdateProfessional(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	professionalID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid professional id")
	}

	var request professionalRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	professional, err := handler.professionalService.Update(user.ID, professionalID, request.input())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update professional")
	}
	return c.JSON(professional)
}

func (handler *Handler) DeleteProfessional(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	professionalID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid professional id")
	}

	if err := handler.professionalService.Delete(user.ID, professionalID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete professional")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
