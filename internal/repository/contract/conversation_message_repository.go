package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/repository/specification"
)

type ConversationMessageRepository interface {
	Create(ctx context.Context, message *entity.ConversationMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByConversationId(ctx context.Context, conversationId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
