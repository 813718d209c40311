package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kuzeykoc/pkg/jwt"
	"kuzeykoc/pkg/logger"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/usecase"
	"kuzeykoc/services/notification/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotificationTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type fakeUseCase struct {
	unread     []entity.Notification
	markedRead []string
	testSent   bool
}

func (f *fakeUseCase) CreateNotification(coachID string, kind entity.Kind, title, message string, payload entity.Payload) (*entity.Notification, error) {
	return &entity.Notification{ID: "n-1", CoachID: coachID, Kind: kind, Title: title, Message: message}, nil
}

func (f *fakeUseCase) GetUnreadNotifications(coachID string) ([]entity.Notification, error) {
	return f.unread, nil
}

func (f *fakeUseCase) MarkNotificationAsRead(id string) error {
	f.markedRead = append(f.markedRead, id)
	return nil
}

func (f *fakeUseCase) SendTestNotification(coachID string) (*entity.Notification, error) {
	f.testSent = true
	return &entity.Notification{ID: "n-test", CoachID: coachID, Kind: entity.KindTest}, nil
}

func (f *fakeUseCase) ResolveCoach(coachID string) (*entity.CoachRef, error) {
	return &entity.CoachRef{ID: coachID, FullName: "Kuzey Hoca", Email: "kuzey@example.com"}, nil
}

func (f *fakeUseCase) AddDailyLog(studentID, subject string, questionCount int, date string) (*entity.DailyLog, error) {
	return &entity.DailyLog{ID: "log-1"}, nil
}

func (f *fakeUseCase) CompleteHomework(homeworkID string) (*entity.Homework, error) {
	return &entity.Homework{ID: homeworkID, IsCompleted: true}, nil
}

func (f *fakeUseCase) AddTrialExam(input usecase.TrialExamInput) (*entity.TrialExam, error) {
	return &entity.TrialExam{ID: "exam-1"}, nil
}

func (f *fakeUseCase) HandleActivityTask(task map[string]interface{}) error {
	return nil
}

func authorized(coachID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", coachID)
		c.Set("role", "coach")
		c.Next()
	}
}

func TestGetNotifications_Unauthorized(t *testing.T) {
	handler := &NotificationHandler{
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.GET("/notifications", handler.GetNotifications)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Contains(t, response["error"], "Unauthorized")
}

func TestGetNotifications_Success(t *testing.T) {
	uc := &fakeUseCase{unread: []entity.Notification{
		{ID: "n-1", CoachID: "coach-1", Kind: entity.KindTest, Title: "Başlık", Message: "Mesaj", CreatedAt: time.Now()},
	}}
	handler := &NotificationHandler{
		notificationUseCase: uc,
		logger:              logger.New(),
	}

	router := setupNotificationTestRouter()
	router.GET("/notifications", authorized("coach-1"), handler.GetNotifications)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestMarkAsRead_Success(t *testing.T) {
	uc := &fakeUseCase{}
	handler := &NotificationHandler{
		notificationUseCase: uc,
		logger:              logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/notifications/:id/read", authorized("coach-1"), handler.MarkAsRead)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications/n-42/read", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"n-42"}, uc.markedRead)
}

func TestSendTestNotification_Unauthorized(t *testing.T) {
	handler := &NotificationHandler{
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/notifications/test", handler.SendTestNotification)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSendTestNotification_Success(t *testing.T) {
	uc := &fakeUseCase{}
	handler := &NotificationHandler{
		notificationUseCase: uc,
		logger:              logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/notifications/test", authorized("coach-1"), handler.SendTestNotification)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/notifications/test", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, uc.testSent)
}

func TestAddDailyLog_InvalidBody(t *testing.T) {
	handler := &NotificationHandler{
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/activity/daily-logs", authorized("coach-1"), handler.AddDailyLog)

	body := bytes.NewBufferString(`{"student_id": "student-1"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/activity/daily-logs", body)
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddDailyLog_Queued(t *testing.T) {
	t.Skip("Skipping test that requires RabbitMQ - covered by integration tests")
}

func TestAddTrialExam_InvalidBody(t *testing.T) {
	handler := &NotificationHandler{
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/activity/trial-exams", authorized("coach-1"), handler.AddTrialExam)

	body := bytes.NewBufferString(`{"exam_name": "Deneme"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/activity/trial-exams", body)
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleNotificationClick(t *testing.T) {
	w := worker.NewWorker(nil, nil, nil, logger.New(), time.Minute, time.Minute)
	handler := &NotificationHandler{
		worker: w,
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.POST("/worker/notifications/click", handler.HandleNotificationClick)

	// Open resolves to the coach dashboard route
	body := bytes.NewBufferString(`{"action": "open"}`)
	rec := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/worker/notifications/click", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "/coach", response["route"])

	// Close dismisses without a route
	body = bytes.NewBufferString(`{"action": "close"}`)
	rec = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/worker/notifications/click", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	response = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotContains(t, response, "route")
}

func TestHandleWebSocket_TokenRequired(t *testing.T) {
	handler := &NotificationHandler{
		logger: logger.New(),
	}

	router := setupNotificationTestRouter()
	router.GET("/notifications/ws", handler.HandleWebSocket)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications/ws", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleWebSocket_InvalidToken(t *testing.T) {
	handler := &NotificationHandler{
		jwtService: jwt.NewService("test-secret"),
		logger:     logger.New(),
	}

	router := setupNotificationTestRouter()
	router.GET("/notifications/ws", handler.HandleWebSocket)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications/ws?token=garbage", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleWebSocket_StudentRoleRejected(t *testing.T) {
	jwtService := jwt.NewService("test-secret")
	token, err := jwtService.GenerateToken("student-1", "student")
	require.NoError(t, err)

	handler := &NotificationHandler{
		jwtService: jwtService,
		logger:     logger.New(),
	}

	router := setupNotificationTestRouter()
	router.GET("/notifications/ws", handler.HandleWebSocket)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/notifications/ws?token="+token, nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
