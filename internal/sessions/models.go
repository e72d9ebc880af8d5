package sessions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Snapshot is the durable copy of one wizard session, keyed for resume on reload
type Snapshot struct {
	Key         string         `json:"key" gorm:"column:session_key;primaryKey;size:160"`
	BuyerID     uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	CurrentStep string         `json:"current_step" gorm:"not null"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb"`
	Drafts      datatypes.JSON `json:"drafts" gorm:"type:jsonb"`
	Completed   bool           `json:"completed" gorm:"default:false;index"`
	CompletedAt *time.Time     `json:"completed_at"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime;index"`
}

// TableName pins the table regardless of gorm naming strategy
func (Snapshot) TableName() string { return "onboarding_sessions" }
