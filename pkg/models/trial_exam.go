package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrialExam struct {
	ID             string            `gorm:"type:uuid;primary_key" json:"id"`
	StudentID      string            `gorm:"type:uuid;not null;index" json:"student_id"`
	ExamName       string            `gorm:"not null" json:"exam_name"`
	Date           string            `gorm:"type:varchar(10);not null" json:"date"` // YYYY-MM-DD
	TotalCorrect   int               `gorm:"default:0" json:"total_correct"`
	TotalIncorrect int               `gorm:"default:0" json:"total_incorrect"`
	TotalBlank     int               `gorm:"default:0" json:"total_blank"`
	Details        []TrialExamDetail `gorm:"foreignKey:TrialExamID" json:"details"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (t *TrialExam) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

type TrialExamDetail struct {
	ID          string  `gorm:"type:uuid;primary_key" json:"id"`
	TrialExamID string  `gorm:"type:uuid;not null;index" json:"trial_exam_id"`
	Subject     Subject `gorm:"type:varchar(50);not null" json:"subject"`
	Correct     int     `gorm:"default:0" json:"correct"`
	Incorrect   int     `gorm:"default:0" json:"incorrect"`
	Blank       int     `gorm:"default:0" json:"blank"`
}

func (t *TrialExamDetail) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
