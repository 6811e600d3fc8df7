package repository

import (
	"fmt"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecentBySessionID returns the last limit messages of the session,
// oldest first.
func (r *MessageRepository) ListRecentBySessionID(sessionID string, tenantID uint, limit int) ([]model.Message, error) {
	limit = clampLimit(limit, 10, 200)

	var messages []model.Message
	err := r.db.
		Where("session_id = ? AND tenant_id = ?", sessionID, tenantID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) ListBySessionID(sessionID string, tenantID uint, limit int) ([]model.Message, error) {
	limit = clampLimit(limit, 100, 500)

	var messages []model.Message
	err := r.db.
		Where("session_id = ? AND tenant_id = ?", sessionID, tenantID).
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// clampLimit applies the fallback for unset limits and caps oversized
// ones instead of discarding them.
func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func (r *MessageRepository) DeleteBySessionID(sessionID string, tenantID uint) error {
	if err := r.db.Where("session_id = ? AND tenant_id = ?", sessionID, tenantID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages failed: %w", err)
	}
	return nil
}
