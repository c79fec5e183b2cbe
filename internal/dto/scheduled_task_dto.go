package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateScheduledTaskRequest struct {
	Name            string     `json:"name" validate:"required"`
	Question        string     `json:"question" validate:"required"`
	ScheduleKind    string     `json:"schedule_kind" validate:"required,oneof=interval cron"`
	IntervalSeconds *int       `json:"interval_seconds" validate:"omitempty,gt=0"`
	CronExpression  *string    `json:"cron_expression"`
	ConversationId  *uuid.UUID `json:"conversation_id"`
}

type ScheduledTaskResponse struct {
	Id             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Question       string     `json:"question"`
	Schedule       string     `json:"schedule"`
	ScheduleKind   string     `json:"schedule_kind"`
	NextRunAt      time.Time  `json:"next_run_at"`
	LastRunAt      *time.Time `json:"last_run_at"`
	RunCount       int        `json:"run_count"`
	Active         bool       `json:"active"`
	LastResult     *string    `json:"last_result"`
	LastError      *string    `json:"last_error"`
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ToggleScheduledTaskResponse struct {
	Id     uuid.UUID `json:"id"`
	Active bool      `json:"active"`
}
