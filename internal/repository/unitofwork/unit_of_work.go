package unitofwork

import (
	"context"

	"ai-sqlchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	ConversationMessageRepository() contract.ConversationMessageRepository
	ScheduledTaskRepository() contract.ScheduledTaskRepository
}
