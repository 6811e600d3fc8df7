package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// GetByID looks a session up across all tenants. Ownership is decided
// by the caller; the lookup itself must be global so a cross-tenant id
// collision can be detected instead of silently creating a twin.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByTenantID(tenantID uint) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("tenant_id = ?", tenantID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Touch(id string) error {
	if err := r.db.Model(&model.Session{}).Where("id = ?", id).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) UpdateTitle(id, title string) error {
	if err := r.db.Model(&model.Session{}).Where("id = ?", id).Update("title", title).Error; err != nil {
		return fmt.Errorf("update session title failed: %w", err)
	}
	return nil
}

// DeleteByIDAndTenantID removes the session and its messages atomically.
func (r *SessionRepository) DeleteByIDAndTenantID(id string, tenantID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Session{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}
