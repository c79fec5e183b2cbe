package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/repository/specification"
)

type ScheduledTaskRepository interface {
	Create(ctx context.Context, task *entity.ScheduledTask) error
	Update(ctx context.Context, task *entity.ScheduledTask) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ScheduledTask, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ScheduledTask, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
