package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/mapper"
	"ai-sqlchat-be/internal/model"
	"ai-sqlchat-be/internal/repository/contract"
	"ai-sqlchat-be/internal/repository/specification"
)

type ScheduledTaskRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ScheduledTaskMapper
}

func NewScheduledTaskRepository(db *gorm.DB) contract.ScheduledTaskRepository {
	return &ScheduledTaskRepositoryImpl{
		db:     db,
		mapper: mapper.NewScheduledTaskMapper(),
	}
}

func (r *ScheduledTaskRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ScheduledTaskRepositoryImpl) Create(ctx context.Context, task *entity.ScheduledTask) error {
	m := r.mapper.ToModel(task)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*task = *r.mapper.ToEntity(m)
	return nil
}

func (r *ScheduledTaskRepositoryImpl) Update(ctx context.Context, task *entity.ScheduledTask) error {
	m := r.mapper.ToModel(task)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*task = *r.mapper.ToEntity(m)
	return nil
}

func (r *ScheduledTaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ScheduledTask{}, id).Error
}

func (r *ScheduledTaskRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ScheduledTask, error) {
	var m model.ScheduledTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ScheduledTaskRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ScheduledTask, error) {
	var models []*model.ScheduledTask
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ScheduledTaskRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ScheduledTask{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
