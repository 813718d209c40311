package model

type DailyLogModel struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey"`
	StudentID     string `gorm:"column:student_id;type:uuid;not null"`
	Subject       string `gorm:"column:subject;type:varchar(50);not null"`
	QuestionCount int    `gorm:"column:question_count;not null"`
	Date          string `gorm:"column:date;type:varchar(10);not null"`
}

func (DailyLogModel) TableName() string {
	return "daily_logs"
}
