package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/dto"
	"ai-sqlchat-be/internal/pkg/apperrors"
)

func newTaskServiceFixture() (IScheduledTaskService, *fakeTaskRepo) {
	taskRepo := newFakeTaskRepo()
	uow := &fakeUow{taskRepo: taskRepo, msgRepo: &fakeMessageRepo{}}
	return NewScheduledTaskService(&fakeUowFactory{uow: uow}), taskRepo
}

func TestCreateIntervalTask(t *testing.T) {
	svc, taskRepo := newTaskServiceFixture()
	interval := 600

	resp, err := svc.Create(context.Background(), uuid.New(), &dto.CreateScheduledTaskRequest{
		Name:            "ventas cada 10 minutos",
		Question:        "¿cuántas ventas hubo hoy?",
		ScheduleKind:    constant.ScheduleKindInterval,
		IntervalSeconds: &interval,
	})
	require.NoError(t, err)

	assert.Equal(t, "cada 10 minutos", resp.Schedule)
	assert.True(t, resp.Active)
	assert.True(t, resp.NextRunAt.After(time.Now().Add(9*time.Minute)))

	stored := taskRepo.get(resp.Id)
	require.NotNil(t, stored)
	assert.Equal(t, "¿cuántas ventas hubo hoy?", stored.Question)
}

func TestCreateRejectsInvalidSchedule(t *testing.T) {
	svc, _ := newTaskServiceFixture()

	cases := []struct {
		name    string
		request dto.CreateScheduledTaskRequest
	}{
		{
			name: "interval without seconds",
			request: dto.CreateScheduledTaskRequest{
				Name:         "sin intervalo",
				Question:     "¿cuántas ventas hubo hoy?",
				ScheduleKind: constant.ScheduleKindInterval,
			},
		},
		{
			name: "cron without expression",
			request: dto.CreateScheduledTaskRequest{
				Name:         "sin cron",
				Question:     "¿cuántas ventas hubo hoy?",
				ScheduleKind: constant.ScheduleKindCron,
			},
		},
		{
			name: "missing question",
			request: dto.CreateScheduledTaskRequest{
				Name:         "sin pregunta",
				ScheduleKind: constant.ScheduleKindInterval,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), &tc.request)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindScheduleInvalid, appErr.Kind)
		})
	}
}

func TestToggleDeactivatesAndReactivates(t *testing.T) {
	svc, taskRepo := newTaskServiceFixture()
	userId := uuid.New()

	task := dueTask()
	task.UserId = userId
	staleSlot := task.NextRunAt
	taskRepo.put(task)

	resp, err := svc.Toggle(context.Background(), userId, task.Id)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	resp, err = svc.Toggle(context.Background(), userId, task.Id)
	require.NoError(t, err)
	assert.True(t, resp.Active)

	// Reactivation must not fire immediately on the stale slot.
	stored := taskRepo.get(task.Id)
	assert.True(t, stored.NextRunAt.After(staleSlot))
	assert.True(t, stored.NextRunAt.After(time.Now()))
}

func TestToggleUnknownTask(t *testing.T) {
	svc, _ := newTaskServiceFixture()

	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New())
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
}

func TestDeleteTask(t *testing.T) {
	svc, taskRepo := newTaskServiceFixture()
	userId := uuid.New()

	task := dueTask()
	task.UserId = userId
	taskRepo.put(task)

	require.NoError(t, svc.Delete(context.Background(), userId, task.Id))
	assert.Nil(t, taskRepo.get(task.Id))

	err := svc.Delete(context.Background(), userId, task.Id)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
}
