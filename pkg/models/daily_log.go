package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject string

const (
	SubjectTurkce    Subject = "Türkçe"
	SubjectMatematik Subject = "Matematik"
	SubjectFen       Subject = "Fen Bilimleri"
	SubjectInkilap   Subject = "T.C. İnkılap Tarihi"
	SubjectDin       Subject = "Din Kültürü"
	SubjectIngilizce Subject = "İngilizce"
)

// DailyLog accumulates solved-question counts. One row per
// student+subject+date: repeated additions merge into the same row.
type DailyLog struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	StudentID     string         `gorm:"type:uuid;not null;uniqueIndex:idx_daily_logs_student_subject_date" json:"student_id"`
	Subject       Subject        `gorm:"type:varchar(50);not null;uniqueIndex:idx_daily_logs_student_subject_date" json:"subject"`
	QuestionCount int            `gorm:"not null" json:"question_count"`
	Date          string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_logs_student_subject_date" json:"date"` // YYYY-MM-DD
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
