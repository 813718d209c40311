package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is the sole durable contract between the producers of
// student activity and the delivery pipeline. Rows are immutable after
// creation except for the one-way is_read transition.
type Notification struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CoachID   string    `gorm:"type:uuid;not null;index" json:"coach_id"`
	Kind      string    `gorm:"type:varchar(40);not null" json:"kind"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	Payload   string    `gorm:"type:jsonb" json:"payload,omitempty"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
