package model

import "time"

type UserModel struct {
	ID        string     `gorm:"column:id;type:uuid;primaryKey"`
	Email     string     `gorm:"column:email;type:varchar(255);not null"`
	FullName  string     `gorm:"column:full_name;type:varchar(255);not null"`
	Role      string     `gorm:"column:role;type:varchar(20);not null"`
	CoachID   *string    `gorm:"column:coach_id;type:uuid"`
	DeletedAt *time.Time `gorm:"column:deleted_at;type:timestamp"`
}

func (UserModel) TableName() string {
	return "users"
}
