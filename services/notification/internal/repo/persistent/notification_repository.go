package persistent

import (
	"errors"
	"fmt"

	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up row does not exist. Callers
// in the delivery path treat it as a silent skip, not a failure.
var ErrNotFound = errors.New("record not found")

type NotificationRepository interface {
	Create(n *entity.Notification) error
	GetUnread(coachID string) ([]entity.Notification, error)
	MarkAsRead(id string) error
}

// ActivityRepository reads and writes the student-activity rows that
// the derived notification triggers operate on.
type ActivityRepository interface {
	ResolveStudent(studentID string) (*entity.StudentRef, error)
	ResolveCoach(coachID string) (*entity.CoachRef, error)
	FindDailyLog(studentID, subject, date string) (*entity.DailyLog, error)
	CreateDailyLog(log *entity.DailyLog) error
	UpdateDailyLogCount(id string, questionCount int) error
	GetHomework(id string) (*entity.Homework, error)
	SetHomeworkCompleted(id string, completed bool) error
	ListHomeworkForDate(studentID, date string) ([]entity.Homework, error)
	CreateTrialExam(exam *entity.TrialExam) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *entity.Notification) error {
	m := ToNotificationModel(n)
	if err := r.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetUnread(coachID string) ([]entity.Notification, error) {
	var rows []model.NotificationModel
	err := r.db.
		Where("coach_id = ? AND is_read = ?", coachID, false).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread notifications: %w", err)
	}
	return ToNotificationEntities(rows), nil
}

func (r *notificationRepository) MarkAsRead(id string) error {
	result := r.db.Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ResolveStudent(studentID string) (*entity.StudentRef, error) {
	var userModel model.UserModel
	err := r.db.
		Where("id = ? AND role = ? AND deleted_at IS NULL", studentID, "student").
		First(&userModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}
	ref := ToStudentRef(&userModel)
	if ref.CoachID == "" {
		return nil, ErrNotFound
	}
	return ref, nil
}

func (r *activityRepository) ResolveCoach(coachID string) (*entity.CoachRef, error) {
	var userModel model.UserModel
	err := r.db.
		Where("id = ? AND role = ? AND deleted_at IS NULL", coachID, "coach").
		First(&userModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve coach: %w", err)
	}
	return ToCoachRef(&userModel), nil
}

func (r *activityRepository) FindDailyLog(studentID, subject, date string) (*entity.DailyLog, error) {
	var logModel model.DailyLogModel
	err := r.db.
		Where("student_id = ? AND subject = ? AND date = ?", studentID, subject, date).
		First(&logModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find daily log: %w", err)
	}
	return ToDailyLogEntity(&logModel), nil
}

func (r *activityRepository) CreateDailyLog(log *entity.DailyLog) error {
	m := ToDailyLogModel(log)
	if err := r.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert daily log: %w", err)
	}
	log.ID = m.ID
	return nil
}

func (r *activityRepository) UpdateDailyLogCount(id string, questionCount int) error {
	err := r.db.Model(&model.DailyLogModel{}).
		Where("id = ?", id).
		Update("question_count", questionCount).Error
	if err != nil {
		return fmt.Errorf("failed to update daily log count: %w", err)
	}
	return nil
}

func (r *activityRepository) GetHomework(id string) (*entity.Homework, error) {
	var hwModel model.HomeworkModel
	err := r.db.
		Where("id = ? AND deleted_at IS NULL", id).
		First(&hwModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch homework: %w", err)
	}
	return ToHomeworkEntity(&hwModel), nil
}

func (r *activityRepository) SetHomeworkCompleted(id string, completed bool) error {
	err := r.db.Model(&model.HomeworkModel{}).
		Where("id = ?", id).
		Update("is_completed", completed).Error
	if err != nil {
		return fmt.Errorf("failed to update homework status: %w", err)
	}
	return nil
}

func (r *activityRepository) ListHomeworkForDate(studentID, date string) ([]entity.Homework, error) {
	var rows []model.HomeworkModel
	err := r.db.
		Where("student_id = ? AND date = ? AND deleted_at IS NULL", studentID, date).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list homework: %w", err)
	}
	return ToHomeworkEntities(rows), nil
}

func (r *activityRepository) CreateTrialExam(exam *entity.TrialExam) error {
	examModel := ToTrialExamModel(exam)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(examModel).Error; err != nil {
			return err
		}
		for i := range exam.Details {
			detail := ToTrialExamDetailModel(examModel.ID, &exam.Details[i])
			if err := tx.Create(detail).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert trial exam: %w", err)
	}
	exam.ID = examModel.ID
	return nil
}
