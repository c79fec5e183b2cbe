package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	ScheduledTaskCompletedEvent = "SCHEDULED_TASK_COMPLETED"
	ScheduledTaskFailedEvent    = "SCHEDULED_TASK_FAILED"
)

// NewScheduledTaskCompleted is emitted after a scheduled question ran and
// produced a result.
func NewScheduledTaskCompleted(taskId, userId uuid.UUID, resultCount int) Event {
	return BaseEvent{
		Type: ScheduledTaskCompletedEvent,
		Data: map[string]interface{}{
			"task_id":      taskId.String(),
			"user_id":      userId.String(),
			"result_count": resultCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewScheduledTaskFailed is emitted when a scheduled run ended in an error.
// The task itself stays active and keeps its next slot.
func NewScheduledTaskFailed(taskId, userId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: ScheduledTaskFailedEvent,
		Data: map[string]interface{}{
			"task_id": taskId.String(),
			"user_id": userId.String(),
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}
