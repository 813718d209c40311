package model

import "time"

type HomeworkModel struct {
	ID          string     `gorm:"column:id;type:uuid;primaryKey"`
	StudentID   string     `gorm:"column:student_id;type:uuid;not null"`
	CoachID     string     `gorm:"column:coach_id;type:uuid;not null"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	Date        string     `gorm:"column:date;type:varchar(10);not null"`
	IsCompleted bool       `gorm:"column:is_completed;default:false"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;type:timestamp"`
}

func (HomeworkModel) TableName() string {
	return "homework"
}
