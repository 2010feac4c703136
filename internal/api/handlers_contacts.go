package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type contactRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	IsPrimary    bool   `json:"is_primary"`
	Priority     *int   `json:"priority"`
}

func (request contactRequest) input() services.EmergencyContactInput {
	return services.EmergencyContactInput{
		Name:         request.Name,
		Relationship: request.Relationship,
		Phone:        request.Phone,
		Email:        request.Email,
		Address:      request.Address,
		IsPrimary:    request.IsPrimary,
		Priority:     request.Priority,
	}
}

func (handler *Handler) ListContacts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	contacts, err := handler.contactService.List(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load contacts")
	}
	return c.JSON(contacts)
}

func (handler *Handler) CreateContact(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request contactRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	contact, err := handler.contactService.Create(user.ID, request.input())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create contact")
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (handler *Handler) UpdateContact(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	var request contactRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	contact, err := handler.contactService.Update(user.ID, contactID, request.input())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update contact")
	}
	return c.JSON(contact)
}

func (handler *Handler) DeleteContact(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	contactID, ok := parseIDParam(c, "id")
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid contact id")
	}

	if err := handler.contactService.Delete(user.ID, contactID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete contact")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
