package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Homework struct {
	ID          string         `gorm:"type:uuid;primary_key" json:"id"`
	StudentID   string         `gorm:"type:uuid;not null;index" json:"student_id"`
	CoachID     string         `gorm:"type:uuid;not null;index" json:"coach_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	Date        string         `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	IsCompleted bool           `gorm:"default:false" json:"is_completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (h *Homework) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}
