package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateWithChunks persists a document together with all of its chunks
// in one transaction. A document must never exist with zero or partial
// chunks after a crash.
func (r *DocumentRepository) CreateWithChunks(doc *model.Document, chunks []model.Chunk) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
			chunks[i].TenantID = doc.TenantID
		}
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create document with chunks failed: %w", err)
	}
	return nil
}

// ListByTenantID returns the tenant's documents in upload order,
// oldest first.
func (r *DocumentRepository) ListByTenantID(tenantID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("tenant_id = ?", tenantID).Order("created_at ASC, id ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) GetByIDAndTenantID(id, tenantID uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

// DeleteByIDAndTenantID removes a document and its chunks atomically.
func (r *DocumentRepository) DeleteByIDAndTenantID(id, tenantID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Document{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}

// DeleteByTenantID removes every document and chunk of the tenant.
func (r *DocumentRepository) DeleteByTenantID(tenantID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ?", tenantID).Delete(&model.Document{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete tenant documents failed: %w", err)
	}
	return nil
}
