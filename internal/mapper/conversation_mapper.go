package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.ConversationMessage) *entity.ConversationMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	var resultsData []map[string]any
	if len(msg.ResultsData) > 0 {
		// Best effort: a corrupted payload degrades to no rows, not an error.
		_ = json.Unmarshal(msg.ResultsData, &resultsData)
	}

	var suggestions []string
	if len(msg.SuggestedQuestions) > 0 {
		_ = json.Unmarshal(msg.SuggestedQuestions, &suggestions)
	}

	return &entity.ConversationMessage{
		Id:                 msg.Id,
		ConversationId:     msg.ConversationId,
		Role:               msg.Role,
		Content:            msg.Content,
		SqlQuery:           msg.SqlQuery,
		ResultsCount:       msg.ResultsCount,
		ResultsData:        resultsData,
		SuggestedQuestions: suggestions,
		CreatedAt:          msg.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          msg.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.ConversationMessage) *model.ConversationMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var resultsData datatypes.JSON
	if msg.ResultsData != nil {
		if raw, err := json.Marshal(msg.ResultsData); err == nil {
			resultsData = raw
		}
	}

	var suggestions datatypes.JSON
	if msg.SuggestedQuestions != nil {
		if raw, err := json.Marshal(msg.SuggestedQuestions); err == nil {
			suggestions = raw
		}
	}

	return &model.ConversationMessage{
		Id:                 msg.Id,
		ConversationId:     msg.ConversationId,
		Role:               msg.Role,
		Content:            msg.Content,
		SqlQuery:           msg.SqlQuery,
		ResultsCount:       msg.ResultsCount,
		ResultsData:        resultsData,
		SuggestedQuestions: suggestions,
		CreatedAt:          msg.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

func (m *ConversationMapper) MessagesToEntities(msgs []*model.ConversationMessage) []*entity.ConversationMessage {
	entities := make([]*entity.ConversationMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.MessageToEntity(msg)
	}
	return entities
}
