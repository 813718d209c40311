package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserBeforeCreate_GeneratesID(t *testing.T) {
	user := &User{Email: "koc@example.com", FullName: "Kuzey Koç", Role: RoleCoach}
	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	_, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr)
}

func TestUserBeforeCreate_KeepsExistingID(t *testing.T) {
	existing := uuid.New().String()
	user := &User{ID: existing}
	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existing, user.ID)
}

func TestHomeworkBeforeCreate_GeneratesID(t *testing.T) {
	hw := &Homework{StudentID: uuid.New().String(), Title: "Matematik Tekrarı", Date: "2024-07-25"}
	err := hw.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, hw.ID)
}

func TestDailyLogBeforeCreate_GeneratesID(t *testing.T) {
	log := &DailyLog{StudentID: uuid.New().String(), Subject: SubjectMatematik, QuestionCount: 10, Date: "2024-07-25"}
	err := log.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, log.ID)
}

func TestTrialExamBeforeCreate_GeneratesID(t *testing.T) {
	exam := &TrialExam{StudentID: uuid.New().String(), ExamName: "LGS Deneme 3", Date: "2024-07-25"}
	err := exam.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, exam.ID)
}

func TestNotificationBeforeCreate_GeneratesID(t *testing.T) {
	n := &Notification{CoachID: uuid.New().String(), Kind: "test", Title: "Test", Message: "test"}
	err := n.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, n.ID)
}
