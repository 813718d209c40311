package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind selects the title/body template and the payload variant of a
// notification.
type Kind string

const (
	KindDailyLogAdded             Kind = "daily-log-added"
	KindHomeworkCompleted         Kind = "homework-completed"
	KindDailyHomeworkAllCompleted Kind = "daily-homework-all-completed"
	KindTrialExamAdded            Kind = "trial-exam-added"
	KindTest                      Kind = "test"
)

// Notification is a single alert for a coach. Everything except IsRead
// is immutable after creation. The payload is carried opaquely by the
// delivery pipeline; only producers and consumers interpret it.
type Notification struct {
	ID        string          `json:"id"`
	CoachID   string          `json:"coach_id"`
	Kind      Kind            `json:"kind"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

// Payload is the closed union of per-kind payload shapes.
type Payload interface {
	PayloadKind() Kind
}

type DailyLogPayload struct {
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	Subject       string `json:"subject"`
	QuestionCount int    `json:"question_count"` // merged running count for the day
	Date          string `json:"date"`
}

func (DailyLogPayload) PayloadKind() Kind { return KindDailyLogAdded }

type HomeworkCompletedPayload struct {
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	HomeworkID    string `json:"homework_id"`
	HomeworkTitle string `json:"homework_title"`
	Date          string `json:"date"`
}

func (HomeworkCompletedPayload) PayloadKind() Kind { return KindHomeworkCompleted }

type DailyHomeworkAllCompletedPayload struct {
	StudentID   string   `json:"student_id"`
	StudentName string   `json:"student_name"`
	Date        string   `json:"date"`
	Titles      []string `json:"titles"`
}

func (DailyHomeworkAllCompletedPayload) PayloadKind() Kind { return KindDailyHomeworkAllCompleted }

type TrialExamPayload struct {
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	ExamName       string `json:"exam_name"`
	Date           string `json:"date"`
	TotalCorrect   int    `json:"total_correct"`
	TotalIncorrect int    `json:"total_incorrect"`
}

func (TrialExamPayload) PayloadKind() Kind { return KindTrialExamAdded }

type TestPayload struct {
	Note string `json:"note,omitempty"`
}

func (TestPayload) PayloadKind() Kind { return KindTest }

// EncodePayload serializes a typed payload for storage on the row.
func EncodePayload(p Payload) (json.RawMessage, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.PayloadKind(), err)
	}
	return data, nil
}

// DecodePayload restores the typed variant for a kind. Consumers that
// only relay the notification never need to call this.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var p Payload
	switch kind {
	case KindDailyLogAdded:
		p = &DailyLogPayload{}
	case KindHomeworkCompleted:
		p = &HomeworkCompletedPayload{}
	case KindDailyHomeworkAllCompleted:
		p = &DailyHomeworkAllCompletedPayload{}
	case KindTrialExamAdded:
		p = &TrialExamPayload{}
	case KindTest:
		p = &TestPayload{}
	default:
		return nil, fmt.Errorf("unknown notification kind: %s", kind)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}
