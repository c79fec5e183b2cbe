package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/dto"
	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/repository/specification"
	"ai-sqlchat-be/internal/repository/unitofwork"
)

type IScheduledTaskService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateScheduledTaskRequest) (*dto.ScheduledTaskResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ScheduledTaskResponse, error)
	Toggle(ctx context.Context, userId uuid.UUID, taskId uuid.UUID) (*dto.ToggleScheduledTaskResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, taskId uuid.UUID) error
}

type scheduledTaskService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewScheduledTaskService(uowFactory unitofwork.RepositoryFactory) IScheduledTaskService {
	return &scheduledTaskService{
		uowFactory: uowFactory,
	}
}

func (s *scheduledTaskService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateScheduledTaskRequest) (*dto.ScheduledTaskResponse, error) {
	now := time.Now()

	task := &entity.ScheduledTask{
		Id:              uuid.New(),
		UserId:          userId,
		ConversationId:  request.ConversationId,
		Name:            request.Name,
		Question:        request.Question,
		ScheduleKind:    request.ScheduleKind,
		IntervalSeconds: request.IntervalSeconds,
		CronExpression:  request.CronExpression,
		Active:          true,
		CreatedAt:       now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.CalculateNextRun(now)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ScheduledTaskRepository().Create(ctx, task); err != nil {
		return nil, err
	}

	return taskToResponse(task), nil
}

func (s *scheduledTaskService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ScheduledTaskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	tasks, err := uow.ScheduledTaskRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ScheduledTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	return responses, nil
}

func (s *scheduledTaskService) Toggle(ctx context.Context, userId uuid.UUID, taskId uuid.UUID) (*dto.ToggleScheduledTaskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	task, err := s.findOwnedTask(ctx, uow, userId, taskId)
	if err != nil {
		return nil, err
	}

	task.Active = !task.Active
	if task.Active {
		// Reactivation schedules from now, not from the stale slot.
		task.CalculateNextRun(time.Now())
	}
	if err := uow.ScheduledTaskRepository().Update(ctx, task); err != nil {
		return nil, err
	}

	return &dto.ToggleScheduledTaskResponse{
		Id:     task.Id,
		Active: task.Active,
	}, nil
}

func (s *scheduledTaskService) Delete(ctx context.Context, userId uuid.UUID, taskId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	task, err := s.findOwnedTask(ctx, uow, userId, taskId)
	if err != nil {
		return err
	}

	return uow.ScheduledTaskRepository().Delete(ctx, task.Id)
}

func (s *scheduledTaskService) findOwnedTask(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, taskId uuid.UUID) (*entity.ScheduledTask, error) {
	task, err := uow.ScheduledTaskRepository().FindOne(ctx,
		specification.ByID{ID: taskId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.NotFound("Tarea programada no encontrada.")
	}
	return task, nil
}

func taskToResponse(task *entity.ScheduledTask) *dto.ScheduledTaskResponse {
	return &dto.ScheduledTaskResponse{
		Id:             task.Id,
		Name:           task.Name,
		Question:       task.Question,
		Schedule:       task.HumanReadableSchedule(),
		ScheduleKind:   task.ScheduleKind,
		NextRunAt:      task.NextRunAt,
		LastRunAt:      task.LastRunAt,
		RunCount:       task.RunCount,
		Active:         task.Active,
		LastResult:     task.LastResult,
		LastError:      task.LastError,
		ConversationId: task.ConversationId,
		CreatedAt:      task.CreatedAt,
	}
}
