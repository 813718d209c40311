package http

import (
	"context"
	"net/http"
	"time"

	"kuzeykoc/pkg/config"
	"kuzeykoc/pkg/jwt"
	"kuzeykoc/pkg/logger"
	"kuzeykoc/pkg/models"
	"kuzeykoc/pkg/queue"
	"kuzeykoc/services/notification/internal/delivery"
	"kuzeykoc/services/notification/internal/entity"
	"kuzeykoc/services/notification/internal/presenter"
	"kuzeykoc/services/notification/internal/realtime"
	"kuzeykoc/services/notification/internal/usecase"
	"kuzeykoc/services/notification/internal/visibility"
	"kuzeykoc/services/notification/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NotificationHandler struct {
	notificationUseCase usecase.NotificationUseCase
	queueClient         *queue.Client
	channel             *realtime.RedisChannel
	worker              *worker.Worker
	jwtService          *jwt.Service
	logger              *logger.Logger

	pollInterval time.Duration
	credentials  worker.Credentials
}

func NewNotificationHandler(
	notificationUseCase usecase.NotificationUseCase,
	queueClient *queue.Client,
	channel *realtime.RedisChannel,
	w *worker.Worker,
	jwtService *jwt.Service,
	log *logger.Logger,
	cfg *config.Config,
) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
		queueClient:         queueClient,
		channel:             channel,
		worker:              w,
		jwtService:          jwtService,
		logger:              log,

		pollInterval: cfg.NotificationPollInterval,
		credentials:  worker.Credentials{URL: cfg.StoreURL, AnonKey: cfg.StoreAnonKey},
	}
}

type AddDailyLogRequest struct {
	StudentID     string `json:"student_id" binding:"required"`
	Subject       string `json:"subject" binding:"required"`
	QuestionCount int    `json:"question_count" binding:"required,gt=0"`
	Date          string `json:"date" binding:"required"`
}

type AddTrialExamRequest struct {
	StudentID string                 `json:"student_id" binding:"required"`
	ExamName  string                 `json:"exam_name" binding:"required"`
	Date      string                 `json:"date" binding:"required"`
	Details   []TrialExamDetailInput `json:"details"`
}

type TrialExamDetailInput struct {
	Subject   string `json:"subject" binding:"required"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Blank     int    `json:"blank"`
}

type NotificationClickRequest struct {
	Action string `json:"action" binding:"required"`
}

// GetNotifications godoc
// @Summary      Get unread notifications
// @Description  Get all unread notifications for the authenticated coach
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	coachID := c.GetString("user_id")
	if coachID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifications, err := h.notificationUseCase.GetUnreadNotifications(coachID)
	if err != nil {
		h.logger.Error("Failed to get notifications: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Description  Acknowledge a notification so it is not presented again
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification ID required"})
		return
	}

	if err := h.notificationUseCase.MarkNotificationAsRead(id); err != nil {
		h.logger.Error("Failed to mark notification as read: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// SendTestNotification godoc
// @Summary      Send a test notification
// @Description  Create a test notification for the authenticated coach
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /notifications/test [post]
func (h *NotificationHandler) SendTestNotification(c *gin.Context) {
	coachID := c.GetString("user_id")
	if coachID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notification, err := h.notificationUseCase.SendTestNotification(coachID)
	if err != nil {
		h.logger.Error("Failed to send test notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send test notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Test notification sent",
		"notification": notification,
	})
}

// AddDailyLog godoc
// @Summary      Record solved questions
// @Description  Queue a daily study log entry for a student
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /activity/daily-logs [post]
func (h *NotificationHandler) AddDailyLog(c *gin.Context) {
	var req AddDailyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := map[string]interface{}{
		"type":           "daily_log_added",
		"student_id":     req.StudentID,
		"subject":        req.Subject,
		"question_count": req.QuestionCount,
		"date":           req.Date,
	}
	if err := h.queueClient.PublishActivityTask(task); err != nil {
		h.logger.Error("Failed to queue daily log: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue daily log"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Daily log queued"})
}

// CompleteHomework godoc
// @Summary      Complete a homework item
// @Description  Queue a homework completion for processing
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Homework ID"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /activity/homework/{id}/complete [post]
func (h *NotificationHandler) CompleteHomework(c *gin.Context) {
	homeworkID := c.Param("id")
	if homeworkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Homework ID required"})
		return
	}

	task := map[string]interface{}{
		"type":        "homework_completed",
		"homework_id": homeworkID,
	}
	if err := h.queueClient.PublishActivityTask(task); err != nil {
		h.logger.Error("Failed to queue homework completion: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue homework completion"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Homework completion queued"})
}

// AddTrialExam godoc
// @Summary      Record a trial exam result
// @Description  Queue a trial exam with per-subject details
// @Tags         activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /activity/trial-exams [post]
func (h *NotificationHandler) AddTrialExam(c *gin.Context) {
	var req AddTrialExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := make([]interface{}, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, map[string]interface{}{
			"subject":   d.Subject,
			"correct":   d.Correct,
			"incorrect": d.Incorrect,
			"blank":     d.Blank,
		})
	}
	task := map[string]interface{}{
		"type":       "trial_exam_added",
		"student_id": req.StudentID,
		"exam_name":  req.ExamName,
		"date":       req.Date,
		"details":    details,
	}
	if err := h.queueClient.PublishActivityTask(task); err != nil {
		h.logger.Error("Failed to queue trial exam: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue trial exam"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Trial exam queued"})
}

// HandleNotificationClick godoc
// @Summary      Resolve a platform notification click
// @Description  Resolve a click on a worker-raised notification to a route
// @Tags         worker
// @Accept       json
// @Produce      json
// @Param        request body NotificationClickRequest true "Click action"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /worker/notifications/click [post]
func (h *NotificationHandler) HandleNotificationClick(c *gin.Context) {
	var req NotificationClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.worker.HandleNotificationClick(req.Action)
	if req.Action == "close" {
		c.JSON(http.StatusOK, gin.H{"message": "Notification dismissed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": "/coach"})
}

// storeAdapter exposes the unread read to the delivery selector.
type storeAdapter struct {
	uc usecase.NotificationUseCase
}

func (a storeAdapter) GetUnread(coachID string) ([]entity.Notification, error) {
	return a.uc.GetUnreadNotifications(coachID)
}

// HandleWebSocket runs one coach delivery session over a websocket. The
// connection carries server-to-page notification, toast, cue and system
// frames, and page-to-server visibility, ack and permission frames.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	coachID := c.GetString("user_id")
	role := c.GetString("role")

	if coachID == "" {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}
		claims, err := h.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		coachID = claims.UserID
		role = claims.Role
	}

	if role != string(models.RoleCoach) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Coach role required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("Delivery session started for coach %s", coachID)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sess := newSession(conn)

	toasts := presenter.NewToastFeed(presenter.DefaultToastDuration)
	toasts.SetListener(func(t presenter.Toast) {
		if err := sess.write(map[string]interface{}{"type": "toast", "toast": t}); err != nil {
			h.logger.Warn("Failed to push toast to coach %s: %v", coachID, err)
		}
	})

	prompt := func() presenter.Permission {
		// Ask the page once; the answer arrives later as a permission
		// frame, until then the platform sink stays off
		_ = sess.write(map[string]string{"type": "permission_request"})
		return presenter.PermissionDefault
	}
	p := presenter.New(workerSink{h.worker}, toasts, cueSink{session: sess}, prompt, h.logger)

	selector := delivery.NewSelector(coachID, storeAdapter{h.notificationUseCase}, h.channel,
		&sessionPresenter{session: sess, presenter: p}, h.logger, h.pollInterval)
	coordinator := visibility.NewCoordinator(selector, h.worker)

	// Hand session state to the background worker so checks continue
	// after this page is gone
	coachData := worker.CoachData{ID: coachID}
	if coach, err := h.notificationUseCase.ResolveCoach(coachID); err != nil {
		// The id alone keeps the worker functional
		h.logger.Warn("Coach %s handed to worker without profile: %v", coachID, err)
	} else {
		coachData.FullName = coach.FullName
		coachData.Email = coach.Email
	}
	h.worker.Send(worker.StoreCoachDataMessage{Coach: coachData})
	h.worker.Send(worker.StoreCredentialsMessage{Credentials: h.credentials})

	go selector.Run(ctx)
	go h.relaySystemNotices(ctx, sess, coachID)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error for coach %s: %v", coachID, err)
			}
			break
		}

		switch msg.Type {
		case "visibility":
			coordinator.SetVisible(msg.Visible)
		case "ack":
			if msg.ID == "" {
				continue
			}
			if err := h.notificationUseCase.MarkNotificationAsRead(msg.ID); err != nil {
				h.logger.Error("Failed to ack notification %s: %v", msg.ID, err)
				continue
			}
			selector.MarkRead(msg.ID)
		case "permission":
			switch msg.State {
			case "granted":
				p.SetPermission(presenter.PermissionGranted)
			case "denied":
				p.SetPermission(presenter.PermissionDenied)
			}
		case "click":
			h.worker.HandleNotificationClick(msg.Action)
		default:
			h.logger.Warn("Unknown client frame %q from coach %s", msg.Type, coachID)
		}
	}

	h.logger.Info("Delivery session ended for coach %s", coachID)
}

// relaySystemNotices streams the worker's platform notifications to the
// page so an open page renders them too.
func (h *NotificationHandler) relaySystemNotices(ctx context.Context, sess *session, coachID string) {
	notices, stop, err := h.channel.SubscribeSystem(ctx, coachID)
	if err != nil {
		h.logger.Warn("System notice relay unavailable for coach %s: %v", coachID, err)
		return
	}
	defer stop()

	for notice := range notices {
		frame := map[string]interface{}{"type": "system_notification", "notice": notice}
		if err := sess.write(frame); err != nil {
			return
		}
	}
}
