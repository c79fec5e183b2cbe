package dto

import "github.com/google/uuid"

// TaskDueMessage is the payload carried on the in-process bus between the
// dispatcher tick and the task worker.
type TaskDueMessage struct {
	TaskId uuid.UUID `json:"task_id"`
}
