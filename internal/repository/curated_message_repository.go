package repository

import (
	"fmt"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type CuratedMessageRepository struct {
	db *gorm.DB
}

func NewCuratedMessageRepository(db *gorm.DB) *CuratedMessageRepository {
	return &CuratedMessageRepository{db: db}
}

func (r *CuratedMessageRepository) Create(msg *model.CuratedMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("create curated message failed: %w", err)
	}
	return nil
}

// ListByTenantID returns curated messages newest first, optionally
// filtered by kind and read state.
func (r *CuratedMessageRepository) ListByTenantID(tenantID uint, kind string, unreadOnly bool) ([]model.CuratedMessage, error) {
	q := r.db.Where("tenant_id = ?", tenantID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if unreadOnly {
		q = q.Where("`read` = ?", false)
	}

	var list []model.CuratedMessage
	if err := q.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list curated messages failed: %w", err)
	}
	return list, nil
}

// MarkRead flips the read flag; the boolean reports whether a row
// matched.
func (r *CuratedMessageRepository) MarkRead(id, tenantID uint) (bool, error) {
	result := r.db.Model(&model.CuratedMessage{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("read", true)
	if result.Error != nil {
		return false, fmt.Errorf("mark curated message read failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
