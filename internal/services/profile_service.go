package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
)

var ErrNotPregnant = errors.New("profile is not marked pregnant")

type ProfileRepository interface {
	FindByUserID(userID uint) (models.Profile, error)
	Save(profile *models.Profile) error
}

type ProfileService struct {
	profiles ProfileRepository
	location *time.Location
	now      func() time.Time
}

func NewProfileService(profiles ProfileRepository, location *time.Location) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	return &ProfileService{profiles: profiles, location: location, now: time.Now}
}

func (service *ProfileService) Get(userID uint) (models.Profile, error) {
	profile, err := service.profiles.FindByUserID(userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return profile, nil
}

func (service *ProfileService) Update(userID uint, input ProfileInput) (models.Profile, error) {
	profile, err := service.Get(userID)
	if err != nil {
		return models.Profile{}, err
	}
	if err := NormalizeProfileInput(&profile, input, service.now().In(service.location)); err != nil {
		return models.Profile{}, err
	}
	if err := service.profiles.Save(&profile); err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (service *ProfileService) Pregnancy(userID uint) (PregnancyStatus, error) {
	profile, err := service.Get(userID)
	if err != nil {
		return PregnancyStatus{}, err
	}
	if !profile.IsPregnant || profile.PregnancyLMP == nil {
		return PregnancyStatus{}, ErrNotPregnant
	}
	today := calendarDayUTC(service.now().In(service.location))
	return ComputePregnancyStatus(today, calendarDayUTC(*profile.PregnancyLMP))
}
