package entity

// StudentRef is the slice of a student row the notification service
// needs to route an alert: identity plus the owning coach.
type StudentRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	CoachID  string `json:"coach_id"`
}

// CoachRef is the coach identity handed to the background worker.
type CoachRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type DailyLog struct {
	ID            string `json:"id"`
	StudentID     string `json:"student_id"`
	Subject       string `json:"subject"`
	QuestionCount int    `json:"question_count"`
	Date          string `json:"date"` // YYYY-MM-DD
}

type Homework struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	CoachID     string `json:"coach_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	IsCompleted bool   `json:"is_completed"`
}

type TrialExam struct {
	ID             string            `json:"id"`
	StudentID      string            `json:"student_id"`
	ExamName       string            `json:"exam_name"`
	Date           string            `json:"date"` // YYYY-MM-DD
	TotalCorrect   int               `json:"total_correct"`
	TotalIncorrect int               `json:"total_incorrect"`
	TotalBlank     int               `json:"total_blank"`
	Details        []TrialExamDetail `json:"details"`
}

type TrialExamDetail struct {
	Subject   string `json:"subject"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Blank     int    `json:"blank"`
}
