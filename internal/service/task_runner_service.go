package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/dto"
	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/pkg/logger"
	"ai-sqlchat-be/internal/repository/specification"
	"ai-sqlchat-be/internal/repository/unitofwork"
	"ai-sqlchat-be/pkg/events"
	"ai-sqlchat-be/pkg/sqlchat/history"
	"ai-sqlchat-be/pkg/sqlchat/pipeline"
)

// OutcomePublisher pushes task outcome events to the external bus. Nil-able
// in tests and when NATS is not configured.
type OutcomePublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ITaskRunnerService interface {
	Start(ctx context.Context, pollInterval time.Duration)
	Consume(ctx context.Context) error
	DispatchDue(ctx context.Context) error
	RunTask(ctx context.Context, taskId uuid.UUID)
}

type taskRunnerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	pipeline   QuestionPipeline
	publisher  OutcomePublisher
	log        logger.ILogger

	// inFlight prevents a slow run from being executed twice when the next
	// tick fires before the previous run finished.
	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

func NewTaskRunnerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	questionPipeline QuestionPipeline,
	publisher OutcomePublisher,
	log logger.ILogger,
) ITaskRunnerService {
	return &taskRunnerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		pipeline:   questionPipeline,
		publisher:  publisher,
		log:        log,
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Start polls for due tasks until the context is cancelled.
func (trs *taskRunnerService) Start(ctx context.Context, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := trs.DispatchDue(ctx); err != nil {
				trs.log.Error("TaskRunner", "dispatch failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// DispatchDue queries the due active tasks and hands each one to the worker
// via the in-process bus.
func (trs *taskRunnerService) DispatchDue(ctx context.Context) error {
	uow := trs.uowFactory.NewUnitOfWork(ctx)

	tasks, err := uow.ScheduledTaskRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.DueBefore{Time: time.Now()},
	)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		payload, err := json.Marshal(dto.TaskDueMessage{TaskId: task.Id})
		if err != nil {
			return err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := trs.pubSub.Publish(trs.topicName, msg); err != nil {
			return err
		}
	}
	return nil
}

func (trs *taskRunnerService) Consume(ctx context.Context) error {
	messages, err := trs.pubSub.Subscribe(ctx, trs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			trs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (trs *taskRunnerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TaskDueMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		trs.log.Error("TaskRunner", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid, drop them
		return
	}

	trs.RunTask(ctx, payload.TaskId)
	// Run outcomes are recorded on the task row itself, so the message is
	// done either way.
	msg.Ack()
}

// RunTask executes one scheduled question. Every attempt counts: the run
// counter and the next slot advance whether the run worked or not, and a
// failure never deactivates the task.
func (trs *taskRunnerService) RunTask(ctx context.Context, taskId uuid.UUID) {
	trs.mu.Lock()
	if trs.inFlight[taskId] {
		trs.mu.Unlock()
		trs.log.Warn("TaskRunner", "task already running, skipping", map[string]interface{}{
			"task_id": taskId.String(),
		})
		return
	}
	trs.inFlight[taskId] = true
	trs.mu.Unlock()

	defer func() {
		trs.mu.Lock()
		delete(trs.inFlight, taskId)
		trs.mu.Unlock()
	}()

	uow := trs.uowFactory.NewUnitOfWork(ctx)

	task, err := uow.ScheduledTaskRepository().FindOne(ctx, specification.ByID{ID: taskId})
	if err != nil {
		trs.log.Error("TaskRunner", "failed to load task", map[string]interface{}{
			"task_id": taskId.String(),
			"error":   err.Error(),
		})
		return
	}
	if task == nil || !task.Active {
		return
	}
	// The persisted next_run_at is the sole re-arming mechanism. A duplicate
	// dispatch for a task that already ran and got re-armed arrives here with
	// a future slot and must be dropped, not executed again.
	if task.NextRunAt.After(time.Now()) {
		return
	}

	now := time.Now()
	task.RunCount++
	task.LastRunAt = &now

	turns := trs.loadTaskHistory(ctx, uow, task)

	outcome, runErr := trs.pipeline.Answer(ctx, task.Question, turns)
	if runErr != nil {
		reason := userFacingReason(runErr)
		task.LastError = &reason
		task.LastResult = nil
		trs.log.Warn("TaskRunner", "scheduled run failed", map[string]interface{}{
			"task_id": task.Id.String(),
			"error":   runErr.Error(),
		})
		trs.publish(ctx, events.NewScheduledTaskFailed(task.Id, task.UserId, reason))
	} else {
		result := summarizeOutcome(outcome)
		task.LastResult = &result
		task.LastError = nil
		trs.appendOutcomeMessage(ctx, uow, task, outcome)
		trs.publish(ctx, events.NewScheduledTaskCompleted(task.Id, task.UserId, len(outcome.Rows)))
	}

	task.CalculateNextRun(now)

	if err := uow.ScheduledTaskRepository().Update(ctx, task); err != nil {
		trs.log.Error("TaskRunner", "failed to persist run outcome", map[string]interface{}{
			"task_id": task.Id.String(),
			"error":   err.Error(),
		})
	}
}

// loadTaskHistory pulls the linked conversation so recurring questions keep
// their original context. A task without a conversation runs cold.
func (trs *taskRunnerService) loadTaskHistory(ctx context.Context, uow unitofwork.UnitOfWork, task *entity.ScheduledTask) []history.Turn {
	if task.ConversationId == nil {
		return nil
	}

	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: *task.ConversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		trs.log.Warn("TaskRunner", "failed to load task history", map[string]interface{}{
			"task_id": task.Id.String(),
			"error":   err.Error(),
		})
		return nil
	}

	turns := make([]history.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, history.Turn{
			Role:     msg.Role,
			Content:  msg.Content,
			SqlQuery: msg.SqlQuery,
		})
	}
	return turns
}

func (trs *taskRunnerService) appendOutcomeMessage(ctx context.Context, uow unitofwork.UnitOfWork, task *entity.ScheduledTask, outcome *pipeline.Outcome) {
	if task.ConversationId == nil {
		return
	}

	msg := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: *task.ConversationId,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        fmt.Sprintf("[Tarea programada: %s] %s", task.Name, summarizeOutcome(outcome)),
		CreatedAt:      time.Now(),
	}
	if outcome.Kind == pipeline.OutcomeSqlResult {
		sql := outcome.Sql
		msg.SqlQuery = &sql
		msg.ResultsCount = len(outcome.Rows)
		msg.ResultsData = outcome.Rows
	}

	if err := uow.ConversationMessageRepository().Create(ctx, msg); err != nil {
		trs.log.Warn("TaskRunner", "failed to append outcome message", map[string]interface{}{
			"task_id": task.Id.String(),
			"error":   err.Error(),
		})
	}
}

func (trs *taskRunnerService) publish(ctx context.Context, event events.Event) {
	if trs.publisher == nil {
		return
	}
	if err := trs.publisher.Publish(ctx, event); err != nil {
		trs.log.Warn("TaskRunner", "failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func summarizeOutcome(outcome *pipeline.Outcome) string {
	if outcome.Kind == pipeline.OutcomeSqlResult {
		return fmt.Sprintf("Ejecutado: %s (%d resultados)", outcome.Summary, len(outcome.Rows))
	}
	return outcome.Text
}

// userFacingReason keeps raw driver or provider errors out of the stored
// last_error field.
func userFacingReason(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Error interno al ejecutar la tarea."
}
