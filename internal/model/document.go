package model

import "time"

// Document is a parsed reference document. FullText holds the cleaned
// extracted text; the original bytes are not kept.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TenantID     uint      `gorm:"not null;index" json:"tenant_id"`
	StoredName   string    `gorm:"size:256;not null" json:"stored_name"`
	OriginalName string    `gorm:"size:256;not null" json:"original_name"`
	Format       string    `gorm:"size:16;not null;check:format IN ('pdf','docx','txt','md')" json:"format"`
	ByteSize     int64     `gorm:"not null;check:byte_size > 0" json:"byte_size"`
	FullText     string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
