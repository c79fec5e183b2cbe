package model

// All returns every persisted model in a stable order. The schema snapshot
// and the migration command both walk this list, so a model missing here is
// invisible to the AI and to AutoMigrate alike.
func All() []any {
	return []any{
		&User{},
		&Conversation{},
		&ConversationMessage{},
		&ScheduledTask{},
	}
}
