package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatQueryRequest struct {
	Question       string     `json:"question" validate:"required"`
	ConversationId *uuid.UUID `json:"conversation_id"`
}

type ChatQueryResponse struct {
	ConversationId     uuid.UUID        `json:"conversation_id"`
	Question           string           `json:"question"`
	Sql                *string          `json:"sql,omitempty"`
	Columns            []string         `json:"columns,omitempty"`
	Results            []map[string]any `json:"results,omitempty"`
	Count              int              `json:"count"`
	Summary            string           `json:"summary"`
	SuggestedQuestions []string         `json:"suggested_questions"`
	ScheduledTaskId    *uuid.UUID       `json:"scheduled_task_id,omitempty"`
}

type ConversationSummaryResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	MessageCount int64      `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ConversationMessageResponse struct {
	Id                 uuid.UUID        `json:"id"`
	Role               string           `json:"role"`
	Content            string           `json:"content"`
	SqlQuery           *string          `json:"sql_query,omitempty"`
	ResultsCount       int              `json:"results_count"`
	ResultsData        []map[string]any `json:"results_data,omitempty"`
	SuggestedQuestions []string         `json:"suggested_questions"`
	CreatedAt          time.Time        `json:"created_at"`
}

type ConversationDetailResponse struct {
	Id        uuid.UUID                     `json:"id"`
	Title     string                        `json:"title"`
	CreatedAt time.Time                     `json:"created_at"`
	Messages  []ConversationMessageResponse `json:"messages"`
}
