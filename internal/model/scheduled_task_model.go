package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduledTask struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	ConversationId  *uuid.UUID     `gorm:"type:uuid;index"` // optional link for outcome messages
	Name            string         `gorm:"type:varchar(255);not null"`
	Question        string         `gorm:"type:text;not null"`
	ScheduleKind    string         `gorm:"type:varchar(20);not null"` // "interval" | "cron"
	IntervalSeconds *int           `gorm:"type:integer"`
	CronExpression  *string        `gorm:"type:varchar(255)"` // stored as a label, never parsed
	NextRunAt       time.Time      `gorm:"not null;index"`
	LastRunAt       *time.Time
	RunCount        int            `gorm:"default:0"`
	Active          bool           `gorm:"default:true;index"`
	LastResult      *string        `gorm:"type:text"`
	LastError       *string        `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (ScheduledTask) TableName() string {
	return "scheduled_tasks"
}
