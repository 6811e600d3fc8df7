package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"guestdesk/internal/model"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(tenant *model.Tenant) error {
	if err := r.db.Create(tenant).Error; err != nil {
		return fmt.Errorf("create tenant failed: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByUsername(username string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.Where("username = ?", username).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query tenant by username failed: %w", err)
	}
	return &tenant, nil
}

func (r *TenantRepository) GetByID(id uint) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query tenant by id failed: %w", err)
	}
	return &tenant, nil
}
