package mapper

import (
	"time"

	"gorm.io/gorm"

	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/model"
)

type ScheduledTaskMapper struct{}

func NewScheduledTaskMapper() *ScheduledTaskMapper {
	return &ScheduledTaskMapper{}
}

func (m *ScheduledTaskMapper) ToEntity(t *model.ScheduledTask) *entity.ScheduledTask {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		ts := t.DeletedAt.Time
		deletedAt = &ts
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		ts := t.UpdatedAt
		updatedAt = &ts
	}

	return &entity.ScheduledTask{
		Id:              t.Id,
		UserId:          t.UserId,
		ConversationId:  t.ConversationId,
		Name:            t.Name,
		Question:        t.Question,
		ScheduleKind:    t.ScheduleKind,
		IntervalSeconds: t.IntervalSeconds,
		CronExpression:  t.CronExpression,
		NextRunAt:       t.NextRunAt,
		LastRunAt:       t.LastRunAt,
		RunCount:        t.RunCount,
		Active:          t.Active,
		LastResult:      t.LastResult,
		LastError:       t.LastError,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       t.DeletedAt.Valid,
	}
}

func (m *ScheduledTaskMapper) ToModel(t *entity.ScheduledTask) *model.ScheduledTask {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.ScheduledTask{
		Id:              t.Id,
		UserId:          t.UserId,
		ConversationId:  t.ConversationId,
		Name:            t.Name,
		Question:        t.Question,
		ScheduleKind:    t.ScheduleKind,
		IntervalSeconds: t.IntervalSeconds,
		CronExpression:  t.CronExpression,
		NextRunAt:       t.NextRunAt,
		LastRunAt:       t.LastRunAt,
		RunCount:        t.RunCount,
		Active:          t.Active,
		LastResult:      t.LastResult,
		LastError:       t.LastError,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

func (m *ScheduledTaskMapper) ToEntities(tasks []*model.ScheduledTask) []*entity.ScheduledTask {
	entities := make([]*entity.ScheduledTask, len(tasks))
	for i, t := range tasks {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
