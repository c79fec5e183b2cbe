package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMessage struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role               string         `gorm:"type:varchar(50);not null"` // "user" | "assistant"
	Content            string         `gorm:"type:text;not null"`
	SqlQuery           *string        `gorm:"type:text"`
	ResultsCount       int            `gorm:"default:0"`
	ResultsData        datatypes.JSON `gorm:"type:jsonb"`
	SuggestedQuestions datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
