package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type ConversationMessage struct {
	Id                 uuid.UUID
	ConversationId     uuid.UUID
	Role               string
	Content            string
	SqlQuery           *string
	ResultsCount       int
	ResultsData        []map[string]any
	SuggestedQuestions []string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
	IsDeleted          bool
}
