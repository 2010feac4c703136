package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/nyinsen/internal/services"
)

var validationErrors = []error{
	services.ErrCycleLengthOutOfRange,
	services.ErrPeriodLengthOutOfRange,
	services.ErrCycleStartDateInvalid,
	services.ErrCycleStartInFuture,
	services.ErrCycleLogDateInvalid,
	services.ErrCycleLogDateInFuture,
	services.ErrCycleLogRangeInvalid,
	services.ErrCycleLogTypeInvalid,
	services.ErrCycleLogFlowInvalid,
	services.ErrCycleLogMoodInvalid,
	services.ErrCycleLogSymptomUnknown,
	services.ErrCycleLogTemperatureOutOfRange,
	services.ErrCycleLogNotesTooLong,
	services.ErrProfileFullNameInvalid,
	services.ErrProfilePhoneInvalid,
	services.ErrProfileAgeOutOfRange,
	services.ErrProfileLocationTooLong,
	services.ErrProfileEmergencyNameInvalid,
	services.ErrProfileEmergencyPhoneInvalid,
	services.ErrProfileMedicalConditionsTooLong,
	services.ErrProfilePregnancyLMPRequired,
	services.ErrProfilePregnancyLMPInvalid,
	services.ErrContactNameInvalid,
	services.ErrContactRelationshipInvalid,
	services.ErrContactPhoneInvalid,
	services.ErrContactEmailInvalid,
	services.ErrContactPriorityOutOfRange,
	services.ErrContactFieldTooLong,
	services.ErrProfessionalNameInvalid,
	services.ErrProfessionalSpecializationInvalid,
	services.ErrProfessionalPhoneInvalid,
	services.ErrProfessionalEmergencyPhoneInvalid,
	services.ErrProfessionalEmailInvalid,
	services.ErrProfessionalFacilityUnknown,
	services.ErrProfessionalFieldTooLong,
	services.ErrProfessionalNotesTooLong,
	services.ErrAlertTypeInvalid,
	services.ErrAlertSeverityInvalid,
	services.ErrAlertTitleInvalid,
	services.ErrAlertDescriptionLong,
	services.ErrAlertFilterInvalid,
	services.ErrChatMessageRequired,
	services.ErrChatMessageEmpty,
	services.ErrChatMessageTooLong,
	services.ErrChatLanguageInvalid,
	services.ErrPasswordChangeIncomplete,
	services.ErrPasswordChangeMismatch,
	services.ErrCurrentPasswordInvalid,
	services.ErrNewPasswordUnchanged,
	services.ErrNewPasswordWeak,
}

var notFoundErrors = []error{
	services.ErrUserNotFound,
	services.ErrCycleLogNotFound,
	services.ErrContactNotFound,
	services.ErrProfessionalNotFound,
	services.ErrAlertNotFound,
}

// respondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and answered with fallback.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apiError(c, fiber.StatusBadRequest, target.Error())
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return apiError(c, fiber.StatusNotFound, target.Error())
		}
	}

	var rateLimited *services.ChatRateLimitError
	switch {
	case errors.As(err, &rateLimited):
		return tooManyRequests(c, services.ErrChatRateLimited.Error(), rateLimited.RetryAfter)
	case errors.Is(err, services.ErrInvalidArgument):
		return apiError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrCycleReferenceMissing), errors.Is(err, services.ErrNotPregnant):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrChatUnavailable):
		return apiError(c, fiber.StatusServiceUnavailable, services.ErrChatUnavailable.Error())
	}

	handler.log.WithError(err).WithField("path", c.Path()).Error(fallback)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
