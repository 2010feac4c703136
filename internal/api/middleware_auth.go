package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/security"
)

var errMissingToken = errors.New("missing session token")

// Paths still reachable while a password change is pending.
var passwordChangeAllowedPaths = map[string]struct{}{
	"/api/settings/change-password": {},
	"/api/auth/me":                  {},
	"/api/auth/logout":              {},
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	if user.MustChangePassword {
		if _, allowed := passwordChangeAllowedPaths[c.Path()]; !allowed {
			return apiError(c, fiber.StatusForbidden, "password change required")
		}
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	rawToken := bearerToken(c.Get(fiber.HeaderAuthorization))
	if rawToken == "" {
		rawToken = strings.TrimSpace(c.Cookies(AuthCookieName))
	}
	if rawToken == "" {
		return nil, errMissingToken
	}

	claims, err := security.ParseSessionToken(handler.secretKey, rawToken, handler.now())
	if err != nil {
		return nil, err
	}

	user, err := handler.authService.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// HasBearerToken reports whether the request authenticates with a header
// token instead of the session cookie.
func HasBearerToken(c *fiber.Ctx) bool {
	return bearerToken(c.Get(fiber.HeaderAuthorization)) != ""
}
