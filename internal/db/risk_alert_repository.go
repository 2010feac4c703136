package db

import (
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

const (
	AlertFilterActive   = "active"
	AlertFilterResolved = "resolved"
	AlertFilterAll      = "all"

	alertListLimit = 50
)

type RiskAlertRepository struct {
	database *gorm.DB
}

func NewRiskAlertRepository(database *gorm.DB) *RiskAlertRepository {
	return &RiskAlertRepository{database: database}
}

func (repo *RiskAlertRepository) Create(alert *models.RiskAlert) error {
	return repo.database.Create(alert).Error
}

func (repo *RiskAlertRepository) FindByIDForUser(alertID uint, userID uint) (models.RiskAlert, error) {
	var alert models.RiskAlert
	if err := repo.database.Where("id = ? AND user_id = ?", alertID, userID).First(&alert).Error; err != nil {
		return models.RiskAlert{}, err
	}
	return alert, nil
}

func (repo *RiskAlertRepository) ListByUser(userID uint, filter string) ([]models.RiskAlert, error) {
	query := repo.database.Where("user_id = ?", userID)
	switch filter {
	case AlertFilterActive:
		query = query.Where("resolved_at IS NULL")
	case AlertFilterResolved:
		query = query.Where("resolved_at IS NOT NULL")
	}

	alerts := make([]models.RiskAlert, 0)
	if err := query.Order("triggered_at DESC, id DESC").Limit(alertListLimit).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// MarkAcknowledged sets acknowledged_at only when it is still empty.
func (repo *RiskAlertRepository) MarkAcknowledged(alertID uint, at time.Time) error {
	return repo.database.Model(&models.RiskAlert{}).
		Where("id = ? AND acknowledged_at IS NULL", alertID).
		Update("acknowledged_at", at).Error
}

// MarkResolved sets resolved_at only when it is still empty.
func (repo *RiskAlertRepository) MarkResolved(alertID uint, at time.Time) error {
	return repo.database.Model(&models.RiskAlert{}).
		Where("id = ? AND resolved_at IS NULL", alertID).
		Update("resolved_at", at).Error
}

func (repo *RiskAlertRepository) MarkNotificationsSent(alertID uint) error {
	return repo.database.Model(&models.RiskAlert{}).
		Where("id = ?", alertID).
		Update("notifications_sent", true).Error
}
