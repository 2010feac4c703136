package db

import (
	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type HealthcareProfessionalRepository struct {
	database *gorm.DB
}

func NewHealthcareProfessionalRepository(database *gorm.DB) *HealthcareProfessionalRepository {
	return &HealthcareProfessionalRepository{database: database}
}

// ListByUser returns the primary professional first, then the rest in the
// order they were added.
func (repo *HealthcareProfessionalRepository) ListByUser(userID uint) ([]models.HealthcareProfessional, error) {
	professionals := make([]models.HealthcareProfessional, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC, id ASC").
		Find(&professionals).Error; err != nil {
		return nil, err
	}
	return professionals, nil
}

func (repo *HealthcareProfessionalRepository) FindByIDForUser(professionalID uint, userID uint) (models.HealthcareProfessional, error) {
	var professional models.HealthcareProfessional
	if err := repo.database.Where("id = ? AND user_id = ?", professionalID, userID).First(&professional).Error; err != nil {
		return models.HealthcareProfessional{}, err
	}
	return professional, nil
}

// FindPrimaryByUser returns gorm.ErrRecordNotFound when the user has no
// primary professional.
func (repo *HealthcareProfessionalRepository) FindPrimaryByUser(userID uint) (models.HealthcareProfessional, error) {
	var professional models.HealthcareProfessional
	if err := repo.database.Where("user_id = ? AND is_primary = ?", userID, true).First(&professional).Error; err != nil {
		return models.HealthcareProfessional{}, err
	}
	return professional, nil
}

// Save persists the professional and clears the primary flag on the user's
// other professionals in the same transaction.
func (repo *HealthcareProfessionalRepository) Save(professional *models.HealthcareProfessional) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(professional).Error; err != nil {
			return err
		}
		if !professional.IsPrimary {
			return nil
		}
		return tx.Model(&models.HealthcareProfessional{}).
			Where("user_id = ? AND id <> ?", professional.UserID, professional.ID).
			Update("is_primary", false).Error
	})
}

func (repo *HealthcareProfessionalRepository) DeleteForUser(professionalID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", professionalID, userID).Delete(&models.HealthcareProfessional{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
