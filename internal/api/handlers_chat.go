package api

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type chatRequest struct {
	Message  json.RawMessage `json:"message"`
	Language string          `json:"language"`
}

// message is nil unless the field holds a JSON string.
func (request chatRequest) message() *string {
	raw := bytes.TrimSpace(request.Message)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return &value
}

func (handler *Handler) Chat(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.chatService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, services.ErrChatUnavailable.Error())
	}

	if err := handler.chatService.Admit(c.UserContext(), user.ID); err != nil {
		return handler.respondServiceError(c, err, "An unexpected error occurred")
	}

	var request chatRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid JSON in request body")
	}

	reply, err := handler.chatService.Answer(c.UserContext(), user.ID, services.ChatInput{
		Message:  request.message(),
		Language: request.Language,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "An unexpected error occurred")
	}
	return c.JSON(reply)
}

func (handler *Handler) ChatHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if handler.chatService == nil {
		return apiError(c, fiber.StatusServiceUnavailable, services.ErrChatUnavailable.Error())
	}

	messages, err := handler.chatService.History(user.ID, c.QueryInt("limit", services.DefaultChatHistoryLimit))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load chat history")
	}
	return c.JSON(messages)
}
