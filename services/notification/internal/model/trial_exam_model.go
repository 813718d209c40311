package model

type TrialExamModel struct {
	ID             string `gorm:"column:id;type:uuid;primaryKey"`
	StudentID      string `gorm:"column:student_id;type:uuid;not null"`
	ExamName       string `gorm:"column:exam_name;not null"`
	Date           string `gorm:"column:date;type:varchar(10);not null"`
	TotalCorrect   int    `gorm:"column:total_correct;default:0"`
	TotalIncorrect int    `gorm:"column:total_incorrect;default:0"`
	TotalBlank     int    `gorm:"column:total_blank;default:0"`
}

func (TrialExamModel) TableName() string {
	return "trial_exams"
}

type TrialExamDetailModel struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey"`
	TrialExamID string `gorm:"column:trial_exam_id;type:uuid;not null"`
	Subject     string `gorm:"column:subject;type:varchar(50);not null"`
	Correct     int    `gorm:"column:correct;default:0"`
	Incorrect   int    `gorm:"column:incorrect;default:0"`
	Blank       int    `gorm:"column:blank;default:0"`
}

func (TrialExamDetailModel) TableName() string {
	return "trial_exam_details"
}
