package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/realtime"
	"kuzeykoc/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
)

type TrialExamInput struct {
	StudentID string
	ExamName  string
	Date      string
	Details   []entity.TrialExamDetail
}

type NotificationUseCase interface {
	CreateNotification(coachID string, kind entity.Kind, title, message string, payload entity.Payload) (*entity.Notification, error)
	GetUnreadNotifications(coachID string) ([]entity.Notification, error)
	MarkNotificationAsRead(id string) error
	SendTestNotification(coachID string) (*entity.Notification, error)
	ResolveCoach(coachID string) (*entity.CoachRef, error)

	AddDailyLog(studentID, subject string, questionCount int, date string) (*entity.DailyLog, error)
	CompleteHomework(homeworkID string) (*entity.Homework, error)
	AddTrialExam(input TrialExamInput) (*entity.TrialExam, error)

	HandleActivityTask(task map[string]interface{}) error
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	activityRepo     persistent.ActivityRepository
	publisher        realtime.Publisher
	logger           *logger.Logger
}

func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	activityRepo persistent.ActivityRepository,
	publisher realtime.Publisher,
	log *logger.Logger,
) NotificationUseCase {
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		activityRepo:     activityRepo,
		publisher:        publisher,
		logger:           log,
	}
}

func (uc *notificationUseCase) CreateNotification(coachID string, kind entity.Kind, title, message string, payload entity.Payload) (*entity.Notification, error) {
	raw, err := entity.EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	notification := &entity.Notification{
		ID:        uuid.New().String(),
		CoachID:   coachID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Payload:   raw,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.notificationRepo.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	// A failed publish only delays delivery until the next poll cycle
	if err := uc.publisher.PublishNotification(context.Background(), notification); err != nil {
		uc.logger.Warn("Failed to publish notification %s: %v", notification.ID, err)
	}

	uc.logger.Info("Notification %s (%s) created for coach %s", notification.ID, kind, coachID)
	return notification, nil
}

func (uc *notificationUseCase) GetUnreadNotifications(coachID string) ([]entity.Notification, error) {
	notifications, err := uc.notificationRepo.GetUnread(coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread notifications: %w", err)
	}
	return notifications, nil
}

func (uc *notificationUseCase) MarkNotificationAsRead(id string) error {
	err := uc.notificationRepo.MarkAsRead(id)
	if errors.Is(err, persistent.ErrNotFound) {
		// Acknowledging a missing row is harmless
		uc.logger.Warn("Mark-as-read skipped, notification %s not found", id)
		return nil
	}
	return err
}

func (uc *notificationUseCase) SendTestNotification(coachID string) (*entity.Notification, error) {
	return uc.CreateNotification(
		coachID,
		entity.KindTest,
		"🔔 Test Bildirimi",
		"Bildirim sistemi çalışıyor!",
		entity.TestPayload{Note: "manual trigger"},
	)
}

// ResolveCoach loads the coach identity handed to the background worker
// on connect.
func (uc *notificationUseCase) ResolveCoach(coachID string) (*entity.CoachRef, error) {
	coach, err := uc.activityRepo.ResolveCoach(coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve coach %s: %w", coachID, err)
	}
	return coach, nil
}

// AddDailyLog records solved questions. Same student+subject+date
// accumulates into one row; the emitted notification always carries the
// merged running count, not the increment.
func (uc *notificationUseCase) AddDailyLog(studentID, subject string, questionCount int, date string) (*entity.DailyLog, error) {
	if questionCount <= 0 {
		return nil, fmt.Errorf("question count must be positive")
	}

	existing, err := uc.activityRepo.FindDailyLog(studentID, subject, date)
	if err != nil && !errors.Is(err, persistent.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up daily log: %w", err)
	}

	var log *entity.DailyLog
	if existing != nil {
		existing.QuestionCount += questionCount
		if err := uc.activityRepo.UpdateDailyLogCount(existing.ID, existing.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to merge daily log: %w", err)
		}
		log = existing
	} else {
		log = &entity.DailyLog{
			ID:            uuid.New().String(),
			StudentID:     studentID,
			Subject:       subject,
			QuestionCount: questionCount,
			Date:          date,
		}
		if err := uc.activityRepo.CreateDailyLog(log); err != nil {
			return nil, fmt.Errorf("failed to create daily log: %w", err)
		}
	}

	student := uc.resolveStudent(studentID)
	if student != nil {
		_, err := uc.CreateNotification(
			student.CoachID,
			entity.KindDailyLogAdded,
			fmt.Sprintf("📚 %s Çalışma Ekledi", student.FullName),
			fmt.Sprintf("%s dersinden %d soru çözdü", subject, log.QuestionCount),
			entity.DailyLogPayload{
				StudentID:     student.ID,
				StudentName:   student.FullName,
				Subject:       subject,
				QuestionCount: log.QuestionCount,
				Date:          date,
			},
		)
		if err != nil {
			uc.logger.Error("Failed to notify daily log for student %s: %v", studentID, err)
		}
	}

	return log, nil
}

// CompleteHomework flips a homework item to completed and emits the
// completion notification. When the flip leaves every homework row for
// that student and date complete, a second all-completed notification
// follows. The all-complete check re-queries current state instead of
// trusting this call's view, so concurrent completions cannot both see
// a stale "not all complete" snapshot.
func (uc *notificationUseCase) CompleteHomework(homeworkID string) (*entity.Homework, error) {
	homework, err := uc.activityRepo.GetHomework(homeworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch homework: %w", err)
	}

	if homework.IsCompleted {
		// Already complete: the false→true transition happened earlier
		return homework, nil
	}

	if err := uc.activityRepo.SetHomeworkCompleted(homeworkID, true); err != nil {
		return nil, fmt.Errorf("failed to complete homework: %w", err)
	}
	homework.IsCompleted = true

	student := uc.resolveStudent(homework.StudentID)
	if student == nil {
		return homework, nil
	}

	_, err = uc.CreateNotification(
		student.CoachID,
		entity.KindHomeworkCompleted,
		fmt.Sprintf("✅ %s Ödev Tamamladı", student.FullName),
		fmt.Sprintf("\"%s\" ödevini bitirdi", homework.Title),
		entity.HomeworkCompletedPayload{
			StudentID:     student.ID,
			StudentName:   student.FullName,
			HomeworkID:    homework.ID,
			HomeworkTitle: homework.Title,
			Date:          homework.Date,
		},
	)
	if err != nil {
		uc.logger.Error("Failed to notify homework completion %s: %v", homeworkID, err)
	}

	uc.checkAllDailyHomeworkCompleted(student, homework.Date)

	return homework, nil
}

func (uc *notificationUseCase) checkAllDailyHomeworkCompleted(student *entity.StudentRef, date string) {
	dayHomework, err := uc.activityRepo.ListHomeworkForDate(student.ID, date)
	if err != nil {
		uc.logger.Error("Failed to check daily homework for student %s: %v", student.ID, err)
		return
	}
	if len(dayHomework) == 0 {
		return
	}

	titles := make([]string, 0, len(dayHomework))
	for _, hw := range dayHomework {
		if !hw.IsCompleted {
			return
		}
		titles = append(titles, hw.Title)
	}

	_, err = uc.CreateNotification(
		student.CoachID,
		entity.KindDailyHomeworkAllCompleted,
		fmt.Sprintf("🎉 %s Günün Tüm Ödevlerini Bitirdi", student.FullName),
		fmt.Sprintf("%s tarihli %d ödevin tamamı tamamlandı", date, len(titles)),
		entity.DailyHomeworkAllCompletedPayload{
			StudentID:   student.ID,
			StudentName: student.FullName,
			Date:        date,
			Titles:      titles,
		},
	)
	if err != nil {
		uc.logger.Error("Failed to notify all-homework completion for student %s: %v", student.ID, err)
	}
}

func (uc *notificationUseCase) AddTrialExam(input TrialExamInput) (*entity.TrialExam, error) {
	exam := &entity.TrialExam{
		ID:        uuid.New().String(),
		StudentID: input.StudentID,
		ExamName:  input.ExamName,
		Date:      input.Date,
		Details:   input.Details,
	}
	for _, d := range input.Details {
		exam.TotalCorrect += d.Correct
		exam.TotalIncorrect += d.Incorrect
		exam.TotalBlank += d.Blank
	}

	if err := uc.activityRepo.CreateTrialExam(exam); err != nil {
		return nil, fmt.Errorf("failed to add trial exam: %w", err)
	}

	student := uc.resolveStudent(input.StudentID)
	if student != nil {
		_, err := uc.CreateNotification(
			student.CoachID,
			entity.KindTrialExamAdded,
			fmt.Sprintf("📊 %s Deneme Sınavı", student.FullName),
			fmt.Sprintf("%s sınavında %d doğru yaptı", exam.ExamName, exam.TotalCorrect),
			entity.TrialExamPayload{
				StudentID:      student.ID,
				StudentName:    student.FullName,
				ExamName:       exam.ExamName,
				Date:           exam.Date,
				TotalCorrect:   exam.TotalCorrect,
				TotalIncorrect: exam.TotalIncorrect,
			},
		)
		if err != nil {
			uc.logger.Error("Failed to notify trial exam for student %s: %v", input.StudentID, err)
		}
	}

	return exam, nil
}

// resolveStudent maps a student to their coach. An unresolved student is
// a data-consistency condition outside this subsystem's remit: the
// notification is skipped silently, never retried.
func (uc *notificationUseCase) resolveStudent(studentID string) *entity.StudentRef {
	student, err := uc.activityRepo.ResolveStudent(studentID)
	if errors.Is(err, persistent.ErrNotFound) {
		uc.logger.Info("No coach resolved for student %s, skipping notification", studentID)
		return nil
	}
	if err != nil {
		uc.logger.Error("Failed to resolve coach for student %s: %v", studentID, err)
		return nil
	}
	return student
}

// HandleActivityTask routes a queued student-activity task from the
// producer services to the matching derived trigger.
func (uc *notificationUseCase) HandleActivityTask(task map[string]interface{}) error {
	taskType, _ := task["type"].(string)

	switch taskType {
	case "daily_log_added":
		studentID, _ := task["student_id"].(string)
		subject, _ := task["subject"].(string)
		count, _ := task["question_count"].(float64)
		date, _ := task["date"].(string)
		if studentID == "" || subject == "" || date == "" {
			return fmt.Errorf("invalid daily_log_added task: %+v", task)
		}
		_, err := uc.AddDailyLog(studentID, subject, int(count), date)
		return err

	case "homework_completed":
		homeworkID, _ := task["homework_id"].(string)
		if homeworkID == "" {
			return fmt.Errorf("invalid homework_completed task: %+v", task)
		}
		_, err := uc.CompleteHomework(homeworkID)
		return err

	case "trial_exam_added":
		studentID, _ := task["student_id"].(string)
		examName, _ := task["exam_name"].(string)
		date, _ := task["date"].(string)
		if studentID == "" || examName == "" {
			return fmt.Errorf("invalid trial_exam_added task: %+v", task)
		}
		input := TrialExamInput{StudentID: studentID, ExamName: examName, Date: date}
		if rawDetails, ok := task["details"].([]interface{}); ok {
			for _, rd := range rawDetails {
				if d, ok := rd.(map[string]interface{}); ok {
					subject, _ := d["subject"].(string)
					correct, _ := d["correct"].(float64)
					incorrect, _ := d["incorrect"].(float64)
					blank, _ := d["blank"].(float64)
					input.Details = append(input.Details, entity.TrialExamDetail{
						Subject:   subject,
						Correct:   int(correct),
						Incorrect: int(incorrect),
						Blank:     int(blank),
					})
				}
			}
		}
		_, err := uc.AddTrialExam(input)
		return err

	default:
		return fmt.Errorf("unknown activity task type: %s", taskType)
	}
}
