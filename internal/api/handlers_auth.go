package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/metrics"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/security"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var request registerRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(services.RegistrationInput{
		Email:           request.Email,
		Password:        request.Password,
		ConfirmPassword: request.ConfirmPassword,
	})
	switch {
	case errors.Is(err, services.ErrAuthEmailInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid email")
	case errors.Is(err, services.ErrAuthPasswordMismatch):
		return apiError(c, fiber.StatusBadRequest, "passwords do not match")
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "password must be at least 8 characters with upper, lower, digit and special characters")
	case errors.Is(err, services.ErrEmailAlreadyRegistered):
		return apiError(c, fiber.StatusConflict, "email already exists")
	case err != nil:
		return handler.respondServiceError(c, err, "failed to create account")
	}

	token, err := handler.startSession(c, user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{Token: token, User: user})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var request loginRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	now := handler.now()
	limiterKey := loginLimiterKey(c, request.Email)
	if blocked, wait := handler.loginLimiter.blocked(limiterKey, now); blocked {
		metrics.RateLimitDenialsTotal.WithLabelValues("login").Inc()
		return tooManyRequests(c, "too many login attempts", wait)
	}

	user, err := handler.authService.Authenticate(request.Email, request.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		handler.loginLimiter.fail(limiterKey, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.clear(limiterKey)

	token, err := handler.startSession(c, user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(sessionResponse{Token: token, User: user})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request changePasswordRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.authService.ChangePassword(user.ID, services.PasswordChangeInput{
		CurrentPassword: request.CurrentPassword,
		NewPassword:     request.NewPassword,
		ConfirmPassword: request.ConfirmPassword,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to change password")
	}

	token, err := handler.startSession(c, user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true, "token": token})
}

// startSession issues a signed token and mirrors it into the auth cookie so
// browser and bearer clients share one flow.
func (handler *Handler) startSession(c *fiber.Ctx, userID uint) (string, error) {
	now := handler.now()
	token, err := security.IssueSessionToken(handler.secretKey, userID, handler.sessionTTL, now)
	if err != nil {
		return "", err
	}

	c.Cookie(&fiber.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  now.Add(handler.sessionTTL),
	})
	return token, nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  handler.now().Add(-1 * time.Hour),
	})
}
