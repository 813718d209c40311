package persistent

import (
	"encoding/json"

	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/model"

	"github.com/google/uuid"
)

func ToNotificationModel(n *entity.Notification) *model.NotificationModel {
	return &model.NotificationModel{
		ID:        n.ID,
		CoachID:   n.CoachID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Payload:   string(n.Payload),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func ToNotificationEntity(m *model.NotificationModel) entity.Notification {
	var payload json.RawMessage
	if m.Payload != "" {
		payload = json.RawMessage(m.Payload)
	}
	return entity.Notification{
		ID:        m.ID,
		CoachID:   m.CoachID,
		Kind:      entity.Kind(m.Kind),
		Title:     m.Title,
		Message:   m.Message,
		Payload:   payload,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func ToNotificationEntities(rows []model.NotificationModel) []entity.Notification {
	notifications := make([]entity.Notification, len(rows))
	for i := range rows {
		notifications[i] = ToNotificationEntity(&rows[i])
	}
	return notifications
}

func ToCoachRef(m *model.UserModel) *entity.CoachRef {
	return &entity.CoachRef{
		ID:       m.ID,
		FullName: m.FullName,
		Email:    m.Email,
	}
}

func ToStudentRef(m *model.UserModel) *entity.StudentRef {
	ref := &entity.StudentRef{
		ID:       m.ID,
		FullName: m.FullName,
	}
	if m.CoachID != nil {
		ref.CoachID = *m.CoachID
	}
	return ref
}

func ToDailyLogEntity(m *model.DailyLogModel) *entity.DailyLog {
	return &entity.DailyLog{
		ID:            m.ID,
		StudentID:     m.StudentID,
		Subject:       m.Subject,
		QuestionCount: m.QuestionCount,
		Date:          m.Date,
	}
}

func ToDailyLogModel(log *entity.DailyLog) *model.DailyLogModel {
	return &model.DailyLogModel{
		ID:            log.ID,
		StudentID:     log.StudentID,
		Subject:       log.Subject,
		QuestionCount: log.QuestionCount,
		Date:          log.Date,
	}
}

func ToHomeworkEntity(m *model.HomeworkModel) *entity.Homework {
	return &entity.Homework{
		ID:          m.ID,
		StudentID:   m.StudentID,
		CoachID:     m.CoachID,
		Title:       m.Title,
		Description: m.Description,
		Date:        m.Date,
		IsCompleted: m.IsCompleted,
	}
}

func ToHomeworkEntities(rows []model.HomeworkModel) []entity.Homework {
	homework := make([]entity.Homework, len(rows))
	for i := range rows {
		homework[i] = *ToHomeworkEntity(&rows[i])
	}
	return homework
}

func ToTrialExamModel(exam *entity.TrialExam) *model.TrialExamModel {
	return &model.TrialExamModel{
		ID:             exam.ID,
		StudentID:      exam.StudentID,
		ExamName:       exam.ExamName,
		Date:           exam.Date,
		TotalCorrect:   exam.TotalCorrect,
		TotalIncorrect: exam.TotalIncorrect,
		TotalBlank:     exam.TotalBlank,
	}
}

func ToTrialExamDetailModel(examID string, d *entity.TrialExamDetail) *model.TrialExamDetailModel {
	return &model.TrialExamDetailModel{
		ID:          uuid.New().String(),
		TrialExamID: examID,
		Subject:     d.Subject,
		Correct:     d.Correct,
		Incorrect:   d.Incorrect,
		Blank:       d.Blank,
	}
}
