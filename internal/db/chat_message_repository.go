package db

import (
	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type ChatMessageRepository struct {
	database *gorm.DB
}

func NewChatMessageRepository(database *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{database: database}
}

func (repo *ChatMessageRepository) CreateExchange(question *models.ChatMessage, answer *models.ChatMessage) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		return tx.Create(answer).Error
	})
}

// ListRecent returns the latest messages for the user in chronological order.
func (repo *ChatMessageRepository) ListRecent(userID uint, limit int) ([]models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0, limit)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	for left, right := 0, len(messages)-1; left < right; left, right = left+1, right-1 {
		messages[left], messages[right] = messages[right], messages[left]
	}
	return messages, nil
}
