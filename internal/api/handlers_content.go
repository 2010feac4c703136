package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/content"
)

const maxGestationalWeek = 42

func (handler *Handler) Guidelines(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"guidelines":       handler.catalog.Guidelines,
		"emergency_number": handler.catalog.EmergencyNumber,
	})
}

// WeeklyTips answers with the fallback week when the catalog has no entry
// for the requested one.
func (handler *Handler) WeeklyTips(c *fiber.Ctx) error {
	week, err := strconv.Atoi(strings.TrimSpace(c.Params("week")))
	if err != nil || week < 1 || week > maxGestationalWeek {
		return apiError(c, fiber.StatusBadRequest, "week must be between 1 and 42")
	}
	return c.JSON(handler.catalog.TipsForWeek(week))
}

func (handler *Handler) SymptomOptions(c *fiber.Ctx) error {
	return c.JSON(handler.catalog.Symptoms)
}

func (handler *Handler) NearbyFacilities(c *fiber.Ctx) error {
	origin := content.DefaultOrigin
	rawLat := strings.TrimSpace(c.Query("lat"))
	rawLng := strings.TrimSpace(c.Query("lng"))
	if rawLat != "" || rawLng != "" {
		lat, latErr := strconv.ParseFloat(rawLat, 64)
		lng, lngErr := strconv.ParseFloat(rawLng, 64)
		origin = content.Point{Latitude: lat, Longitude: lng}
		if latErr != nil || lngErr != nil || !origin.Valid() {
			return apiError(c, fiber.StatusBadRequest, "lat and lng must be valid coordinates")
		}
	}

	radius := content.DefaultSearchRadiusKm
	if raw := strings.TrimSpace(c.Query("radius_km")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return apiError(c, fiber.StatusBadRequest, "radius_km must be a positive number")
		}
		radius = parsed
	}

	return c.JSON(fiber.Map{
		"origin":     origin,
		"radius_km":  radius,
		"facilities": handler.catalog.NearbyFacilities(origin, radius),
	})
}
