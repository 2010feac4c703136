package db

import (
	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type NotificationLogRepository struct {
	database *gorm.DB
}

func NewNotificationLogRepository(database *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{database: database}
}

func (repo *NotificationLogRepository) Create(entry *models.NotificationLog) error {
	return repo.database.Create(entry).Error
}

func (repo *NotificationLogRepository) ListByAlert(alertID uint) ([]models.NotificationLog, error) {
	entries := make([]models.NotificationLog, 0)
	if err := repo.database.Where("alert_id = ?", alertID).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
