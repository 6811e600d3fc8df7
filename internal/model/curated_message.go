package model

import "time"

// CuratedMessage is a denormalized copy of a guest message whose
// classification made it worth operator review (a blessing, a question).
// It lives independently of the raw transcript: clearing a session does
// not touch the review queue.
type CuratedMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	SessionID   string    `gorm:"size:64;not null;index" json:"session_id"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Kind        string    `gorm:"size:16;not null;index" json:"kind"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Read        bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
