package model

import "time"

// Session is one guest conversation. The ID is caller-supplied or minted
// by the orchestrator and is globally unique across tenants: once bound
// to a tenant it can never be reused by another one.
type Session struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Title       string    `gorm:"size:256" json:"title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
