package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type CycleLogRepository struct {
	database *gorm.DB
}

func NewCycleLogRepository(database *gorm.DB) *CycleLogRepository {
	return &CycleLogRepository{database: database}
}

func (repo *CycleLogRepository) ListByUserRange(userID uint, from time.Time, toExclusive time.Time) ([]models.CycleLog, error) {
	logs := make([]models.CycleLog, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, toExclusive).
		Order("date ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *CycleLogRepository) FindByUserAndDay(userID uint, day time.Time) (models.CycleLog, bool, error) {
	entry := models.CycleLog{}
	err := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, day, day.AddDate(0, 0, 1)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CycleLog{}, false, nil
	}
	if err != nil {
		return models.CycleLog{}, false, err
	}
	return entry, true, nil
}

// LatestPeriodDayBefore returns the most recent period day strictly before day.
func (repo *CycleLogRepository) LatestPeriodDayBefore(userID uint, day time.Time) (time.Time, bool, error) {
	entry := models.CycleLog{}
	err := repo.database.
		Select("date").
		Where("user_id = ? AND is_period = ? AND date < ?", userID, true, day).
		Order("date DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return entry.Date, true, nil
}

func (repo *CycleLogRepository) Save(entry *models.CycleLog) error {
	return repo.database.Save(entry).Error
}

func (repo *CycleLogRepository) DeleteByUserAndDay(userID uint, day time.Time) (bool, error) {
	result := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, day, day.AddDate(0, 0, 1)).
		Delete(&models.CycleLog{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
