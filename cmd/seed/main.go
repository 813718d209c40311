package main

import (
	"flag"
	"fmt"
	"time"

	"kuzeykoc/pkg/config"
	"kuzeykoc/pkg/database"
	"kuzeykoc/pkg/logger"
	"kuzeykoc/pkg/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	coach, err := ensureUser(db, log, "kuzey@test.com", "Kuzey Hoca", models.RoleCoach, nil)
	if err != nil {
		return err
	}

	students := []struct {
		email    string
		fullName string
	}{
		{"ayse@test.com", "Ayşe Yılmaz"},
		{"mehmet@test.com", "Mehmet Demir"},
		{"zeynep@test.com", "Zeynep Kaya"},
	}

	today := time.Now().Format("2006-01-02")

	for i, s := range students {
		student, err := ensureUser(db, log, s.email, s.fullName, models.RoleStudent, &coach.ID)
		if err != nil {
			log.Error("Failed to create student %s: %v", s.fullName, err)
			continue
		}

		homework := []models.Homework{
			{
				StudentID:   student.ID,
				CoachID:     coach.ID,
				Title:       "Matematik paragraf problemleri",
				Description: "Sayfa 42-45 arası tüm sorular",
				Date:        today,
			},
			{
				StudentID:   student.ID,
				CoachID:     coach.ID,
				Title:       "Türkçe paragraf denemesi",
				Description: "20 soruluk deneme",
				Date:        today,
			},
		}
		for i := range homework {
			hw := &homework[i]
			var existing models.Homework
			result := db.Where("student_id = ? AND title = ? AND date = ?", hw.StudentID, hw.Title, hw.Date).First(&existing)
			if result.Error == nil {
				continue
			}
			if err := hw.BeforeCreate(nil); err != nil {
				return fmt.Errorf("failed to generate homework ID: %w", err)
			}
			if err := db.Create(hw).Error; err != nil {
				log.Error("Failed to create homework for %s: %v", student.FullName, err)
				continue
			}
			log.Info("Created homework %q for %s", hw.Title, student.FullName)
		}

		dailyLog := &models.DailyLog{
			StudentID:     student.ID,
			Subject:       models.SubjectMatematik,
			QuestionCount: 25,
			Date:          today,
		}
		var existingLog models.DailyLog
		result := db.Where("student_id = ? AND subject = ? AND date = ?",
			dailyLog.StudentID, dailyLog.Subject, dailyLog.Date).First(&existingLog)
		if result.Error != nil {
			if err := dailyLog.BeforeCreate(nil); err != nil {
				return fmt.Errorf("failed to generate daily log ID: %w", err)
			}
			if err := db.Create(dailyLog).Error; err != nil {
				log.Error("Failed to create daily log for %s: %v", student.FullName, err)
			} else {
				log.Info("Created daily log for %s", student.FullName)
			}
		}

		if i == 0 {
			if err := seedTrialExam(db, log, student, today); err != nil {
				log.Error("Failed to create trial exam for %s: %v", student.FullName, err)
			}
		}
	}

	if err := seedWelcomeNotification(db, log, coach); err != nil {
		log.Error("Failed to create welcome notification: %v", err)
	}

	log.Info("Created coach %s with %d students", coach.FullName, len(students))
	return nil
}

func seedTrialExam(db *gorm.DB, log *logger.Logger, student *models.User, date string) error {
	examName := "LGS Deneme 1"
	var existing models.TrialExam
	result := db.Where("student_id = ? AND exam_name = ?", student.ID, examName).First(&existing)
	if result.Error == nil {
		return nil
	}

	exam := &models.TrialExam{
		StudentID: student.ID,
		ExamName:  examName,
		Date:      date,
		Details: []models.TrialExamDetail{
			{Subject: models.SubjectMatematik, Correct: 15, Incorrect: 3, Blank: 2},
			{Subject: models.SubjectTurkce, Correct: 17, Incorrect: 2, Blank: 1},
			{Subject: models.SubjectFen, Correct: 14, Incorrect: 4, Blank: 2},
		},
	}
	for _, d := range exam.Details {
		exam.TotalCorrect += d.Correct
		exam.TotalIncorrect += d.Incorrect
		exam.TotalBlank += d.Blank
	}
	if err := exam.BeforeCreate(nil); err != nil {
		return fmt.Errorf("failed to generate trial exam ID: %w", err)
	}
	if err := db.Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create trial exam: %w", err)
	}

	log.Info("Created trial exam %q for %s", examName, student.FullName)
	return nil
}

func seedWelcomeNotification(db *gorm.DB, log *logger.Logger, coach *models.User) error {
	title := "🔔 Test Bildirimi"
	var existing models.Notification
	result := db.Where("coach_id = ? AND title = ?", coach.ID, title).First(&existing)
	if result.Error == nil {
		return nil
	}

	notification := &models.Notification{
		CoachID:   coach.ID,
		Kind:      "test",
		Title:     title,
		Message:   "Bildirim sistemi çalışıyor!",
		Payload:   `{"note":"seed"}`,
		CreatedAt: time.Now().UTC(),
	}
	if err := notification.BeforeCreate(nil); err != nil {
		return fmt.Errorf("failed to generate notification ID: %w", err)
	}
	if err := db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	log.Info("Created welcome notification for %s", coach.FullName)
	return nil
}

func ensureUser(db *gorm.DB, log *logger.Logger, email, fullName string, role models.UserRole, coachID *string) (*models.User, error) {
	var existing models.User
	result := db.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		log.Info("User %s already exists, skipping", email)
		return &existing, nil
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	user := &models.User{
		Email:    email,
		FullName: fullName,
		Password: string(hashedPassword),
		Role:     role,
		CoachID:  coachID,
		IsActive: true,
	}
	if err := user.BeforeCreate(nil); err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}

	log.Info("Created user: %s (%s)", fullName, email)
	return user, nil
}
