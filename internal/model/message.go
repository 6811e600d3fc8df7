package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is append-only; ordering follows insertion order.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:64;not null;index" json:"session_id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	Role       string    `gorm:"size:16;not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	TokensUsed int       `gorm:"not null;default:0" json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`

	Session *Session `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
