package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/content"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/services"
)

type profileRequest struct {
	FullName              string `json:"full_name"`
	Phone                 string `json:"phone"`
	Age                   *int   `json:"age"`
	Location              string `json:"location"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalConditions     string `json:"medical_conditions"`
	IsPregnant            bool   `json:"is_pregnant"`
	PregnancyLMP          string `json:"pregnancy_lmp"`
}

type profileResponse struct {
	FullName              string  `json:"full_name"`
	Phone                 string  `json:"phone"`
	Age                   *int    `json:"age"`
	Location              string  `json:"location"`
	EmergencyContactName  string  `json:"emergency_contact_name"`
	EmergencyContactPhone string  `json:"emergency_contact_phone"`
	MedicalConditions     string  `json:"medical_conditions"`
	IsPregnant            bool    `json:"is_pregnant"`
	PregnancyLMP          *string `json:"pregnancy_lmp"`
}

type pregnancyResponse struct {
	LastMenstrualPeriod string                     `json:"last_menstrual_period"`
	DueDate             string                     `json:"due_date"`
	GestationalWeeks    int                        `json:"gestational_weeks"`
	GestationalDays     int                        `json:"gestational_days"`
	Trimester           int                        `json:"trimester"`
	WeeksRemaining      int                        `json:"weeks_remaining"`
	Guidance            *content.TrimesterGuidance `json:"guidance"`
	Tips                content.WeeklyTips         `json:"tips"`
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profileService.Get(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load profile")
	}
	return c.JSON(newProfileResponse(profile))
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var request profileRequest
	if err := parseJSONBody(c, &request); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	profile, err := handler.profileService.Update(user.ID, services.ProfileInput{
		FullName:              request.FullName,
		Phone:                 request.Phone,
		Age:                   request.Age,
		Location:              request.Location,
		EmergencyContactName:  request.EmergencyContactName,
		EmergencyContactPhone: request.EmergencyContactPhone,
		MedicalConditions:     request.MedicalConditions,
		IsPregnant:            request.IsPregnant,
		PregnancyLMPRaw:       request.PregnancyLMP,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update profile")
	}
	return c.JSON(newProfileResponse(profile))
}

// GetPregnancy dates the pregnancy and attaches the trimester guidance and
// the tips for the current week.
func (handler *Handler) GetPregnancy(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	status, err := handler.profileService.Pregnancy(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load pregnancy status")
	}

	response := pregnancyResponse{
		LastMenstrualPeriod: formatDay(status.LastMenstrualPeriod),
		DueDate:             formatDay(status.DueDate),
		GestationalWeeks:    status.GestationalWeeks,
		GestationalDays:     status.GestationalDays,
		Trimester:           status.Trimester,
		WeeksRemaining:      status.WeeksRemaining,
		Tips:                handler.catalog.TipsForWeek(status.GestationalWeeks),
	}
	if guidance, found := handler.catalog.TrimesterGuidance(status.Trimester); found {
		response.Guidance = &guidance
	}
	return c.JSON(response)
}

func newProfileResponse(profile models.Profile) profileResponse {
	return profileResponse{
		FullName:              profile.FullName,
		Phone:                 profile.Phone,
		Age:                   profile.Age,
		Location:              profile.Location,
		EmergencyContactName:  profile.EmergencyContactName,
		EmergencyContactPhone: profile.EmergencyContactPhone,
		MedicalConditions:     profile.MedicalConditions,
		IsPregnant:            profile.IsPregnant,
		PregnancyLMP:          formatOptionalDay(profile.PregnancyLMP),
	}
}
