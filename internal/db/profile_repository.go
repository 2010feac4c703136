package db

import (
	"errors"

	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

// FindByUserID returns the stored profile, or an unsaved empty one when the
// user has none yet.
func (repo *ProfileRepository) FindByUserID(userID uint) (models.Profile, error) {
	var profile models.Profile
	err := repo.database.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (repo *ProfileRepository) Save(profile *models.Profile) error {
	return repo.database.Save(profile).Error
}
