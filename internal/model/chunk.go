package model

import "time"

// Chunk is one retrieval segment of a document. Idx is the zero-based
// position within the document; chunks ordered by Idx reassemble the
// source text (with overlap). TenantID is denormalized so retrieval
// queries never need a join that could leak across tenants.
type Chunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Idx        int       `gorm:"column:idx;not null;check:idx >= 0" json:"idx"`
	CreatedAt  time.Time `json:"created_at"`

	Document *Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
