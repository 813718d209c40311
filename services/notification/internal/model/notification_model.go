package model

import "time"

type NotificationModel struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	CoachID   string    `gorm:"column:coach_id;type:uuid;not null"`
	Kind      string    `gorm:"column:kind;type:varchar(40);not null"`
	Title     string    `gorm:"column:title;not null"`
	Message   string    `gorm:"column:message;not null"`
	Payload   string    `gorm:"column:payload;type:jsonb"`
	IsRead    bool      `gorm:"column:is_read;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}
