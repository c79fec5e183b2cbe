package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/dto"
	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/pkg/logger"
	"ai-sqlchat-be/internal/repository/memory"
	"ai-sqlchat-be/internal/repository/specification"
	"ai-sqlchat-be/internal/repository/unitofwork"
	"ai-sqlchat-be/pkg/sqlchat/history"
	"ai-sqlchat-be/pkg/sqlchat/pipeline"
	"ai-sqlchat-be/pkg/sqlchat/safety"
	"ai-sqlchat-be/pkg/sqlchat/schedule"
)

// QuestionPipeline is the part of the NL-to-SQL pipeline the services need.
// Kept narrow so tests can substitute a fake.
type QuestionPipeline interface {
	Answer(ctx context.Context, question string, turns []history.Turn) (*pipeline.Outcome, error)
}

type IChatService interface {
	Query(ctx context.Context, userId uuid.UUID, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error)
	GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationSummaryResponse, error)
	GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ConversationDetailResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	pipeline   QuestionPipeline
	quota      *memory.QuotaRepository
	quotaLimit int
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	questionPipeline QuestionPipeline,
	quota *memory.QuotaRepository,
	quotaLimit int,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		pipeline:   questionPipeline,
		quota:      quota,
		quotaLimit: quotaLimit,
		log:        log,
	}
}

func (cs *chatService) Query(ctx context.Context, userId uuid.UUID, request *dto.ChatQueryRequest) (*dto.ChatQueryResponse, error) {
	now := time.Now()

	if cs.quotaLimit > 0 && cs.quota.Usage(userId, now) >= cs.quotaLimit {
		return nil, apperrors.InputRejected("Has alcanzado el límite diario de preguntas. Intenta de nuevo mañana.")
	}

	// A rejected question is never stored, so the checks run before any
	// write, including the conversation itself.
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, apperrors.InputRejected("La pregunta no puede estar vacía.")
	}
	question = truncateRunes(question, constant.MaxQuestionLength)
	if err := safety.CheckQuestion(question); err != nil {
		return nil, err
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.getOrCreateConversation(ctx, uow, userId, request.ConversationId)
	if err != nil {
		return nil, err
	}

	// A schedule phrase turns the question into a recurring task instead of
	// a one-shot answer.
	if directive := schedule.Parse(question, now); directive != nil {
		return cs.createTaskFromDirective(ctx, uow, userId, conversation, question, directive, now)
	}

	// History is captured before the new question is stored so the model
	// sees it once, as the question, not twice.
	turns, err := cs.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		return nil, err
	}

	userMsg := &entity.ConversationMessage{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	if err := uow.ConversationMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}

	outcome, err := cs.pipeline.Answer(ctx, question, turns)
	if err != nil {
		return nil, err
	}
	cs.quota.Increment(userId, now)

	response := &dto.ChatQueryResponse{
		ConversationId:     conversation.Id,
		Question:           question,
		SuggestedQuestions: outcome.SuggestedQuestions,
	}

	assistantMsg := &entity.ConversationMessage{
		Id:                 uuid.New(),
		ConversationId:     conversation.Id,
		Role:               constant.ChatMessageRoleAssistant,
		SuggestedQuestions: outcome.SuggestedQuestions,
		CreatedAt:          time.Now(),
	}

	if outcome.Kind == pipeline.OutcomeSqlResult {
		sql := outcome.Sql
		response.Sql = &sql
		response.Columns = outcome.Columns
		response.Results = outcome.Rows
		response.Count = len(outcome.Rows)
		response.Summary = outcome.Summary

		assistantMsg.Content = outcome.Summary
		assistantMsg.SqlQuery = &sql
		assistantMsg.ResultsCount = len(outcome.Rows)
		assistantMsg.ResultsData = outcome.Rows
	} else {
		response.Summary = outcome.Text
		assistantMsg.Content = outcome.Text
	}

	if err := uow.ConversationMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if err := cs.maybeDeriveTitle(ctx, uow, conversation, request.Question); err != nil {
		cs.log.Warn("ChatService", "title derivation failed", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}

	return response, nil
}

func (cs *chatService) createTaskFromDirective(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	conversation *entity.Conversation,
	originalQuestion string,
	directive *schedule.Directive,
	now time.Time,
) (*dto.ChatQueryResponse, error) {
	if directive.Question == "" {
		return nil, apperrors.ScheduleInvalid("No se encontró una pregunta junto a la programación. Indica qué consultar, por ejemplo: \"cada 5 minutos, muéstrame los pedidos\".")
	}

	interval := directive.IntervalSeconds
	convId := conversation.Id
	task := &entity.ScheduledTask{
		Id:              uuid.New(),
		UserId:          userId,
		ConversationId:  &convId,
		Name:            truncateRunes(directive.Question, 100),
		Question:        directive.Question,
		ScheduleKind:    constant.ScheduleKindInterval,
		IntervalSeconds: &interval,
		NextRunAt:       now.Add(time.Duration(interval) * time.Second),
		Active:          true,
		CreatedAt:       now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uow.ScheduledTaskRepository().Create(ctx, task); err != nil {
		return nil, err
	}

	confirmation := fmt.Sprintf("✅ Tarea programada: \"%s\" se ejecutará %s.",
		task.Question, task.HumanReadableSchedule())

	messages := []*entity.ConversationMessage{
		{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			Role:           constant.ChatMessageRoleUser,
			Content:        originalQuestion,
			CreatedAt:      now,
		},
		{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			Role:           constant.ChatMessageRoleAssistant,
			Content:        confirmation,
			CreatedAt:      now,
		},
	}
	for _, msg := range messages {
		if err := uow.ConversationMessageRepository().Create(ctx, msg); err != nil {
			return nil, err
		}
	}

	if err := cs.maybeDeriveTitle(ctx, uow, conversation, originalQuestion); err != nil {
		cs.log.Warn("ChatService", "title derivation failed", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}

	taskId := task.Id
	return &dto.ChatQueryResponse{
		ConversationId:     conversation.Id,
		Question:           originalQuestion,
		Summary:            confirmation,
		SuggestedQuestions: []string{},
		ScheduledTaskId:    &taskId,
	}, nil
}

func (cs *chatService) GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationSummaryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ConversationSummaryResponse, 0, len(conversations))
	for _, c := range conversations {
		count, err := uow.ConversationMessageRepository().Count(ctx,
			specification.ByConversationID{ConversationID: c.Id})
		if err != nil {
			return nil, err
		}
		responses = append(responses, &dto.ConversationSummaryResponse{
			Id:           c.Id,
			Title:        c.Title,
			MessageCount: count,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return responses, nil
}

func (cs *chatService) GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ConversationDetailResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.findOwnedConversation(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := &dto.ConversationDetailResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		Messages:  make([]dto.ConversationMessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		suggestions := msg.SuggestedQuestions
		if suggestions == nil {
			suggestions = []string{}
		}
		response.Messages = append(response.Messages, dto.ConversationMessageResponse{
			Id:                 msg.Id,
			Role:               msg.Role,
			Content:            msg.Content,
			SqlQuery:           msg.SqlQuery,
			ResultsCount:       msg.ResultsCount,
			ResultsData:        msg.ResultsData,
			SuggestedQuestions: suggestions,
			CreatedAt:          msg.CreatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedConversation(ctx, uow, userId, conversationId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ConversationMessageRepository().DeleteAllByConversationId(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		return err
	}

	return uow.Commit()
}

func (cs *chatService) getOrCreateConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, conversationId *uuid.UUID) (*entity.Conversation, error) {
	if conversationId != nil {
		return cs.findOwnedConversation(ctx, uow, userId, *conversationId)
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Nueva conversación",
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (cs *chatService) findOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, conversationId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperrors.NotFound("Conversación no encontrada.")
	}
	return conversation, nil
}

// loadHistory maps the stored conversation into the turns the pipeline
// feeds back to the model. The window cut happens downstream.
func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]history.Turn, error) {
	messages, err := uow.ConversationMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]history.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, history.Turn{
			Role:     msg.Role,
			Content:  msg.Content,
			SqlQuery: msg.SqlQuery,
		})
	}
	return turns, nil
}

// maybeDeriveTitle replaces the placeholder title once the first exchange
// completed, using the first question as the title.
func (cs *chatService) maybeDeriveTitle(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation, question string) error {
	count, err := uow.ConversationMessageRepository().Count(ctx,
		specification.ByConversationID{ConversationID: conversation.Id})
	if err != nil {
		return err
	}
	if count != 2 {
		return nil
	}
	conversation.Title = truncateRunes(question, 50)
	return uow.ConversationRepository().Update(ctx, conversation)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
