package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/dto"
	"ai-sqlchat-be/internal/entity"
	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/repository/memory"
	"ai-sqlchat-be/internal/repository/specification"
)

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uuid.UUID]*entity.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conversation
	r.conversations[conversation.Id] = &copied
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	return r.Create(ctx, conversation)
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var byID *uuid.UUID
	var byUser *uuid.UUID
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			id := s.ID
			byID = &id
		case specification.ByUserID:
			id := s.UserID
			byUser = &id
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		if byID != nil && c.Id != *byID {
			continue
		}
		if byUser != nil && c.UserId != *byUser {
			continue
		}
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Conversation
	for _, c := range r.conversations {
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.conversations)), nil
}

func newChatFixture(p QuestionPipeline, quotaLimit int) (IChatService, *fakeUow) {
	uow := &fakeUow{
		taskRepo: newFakeTaskRepo(),
		msgRepo:  &fakeMessageRepo{},
		convRepo: newFakeConversationRepo(),
	}
	svc := NewChatService(
		&fakeUowFactory{uow: uow},
		p,
		memory.NewQuotaRepository(),
		quotaLimit,
		nopLogger{},
	)
	return svc, uow
}

func TestQueryAnswersQuestion(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)
	userId := uuid.New()

	resp, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{
		Question: "muéstrame los pedidos",
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.Sql == nil || *resp.Sql != "SELECT * FROM orders LIMIT 100" {
		t.Errorf("Sql = %v", resp.Sql)
	}
	if resp.Count != 1 || resp.Summary != "Hay 1 pedido." {
		t.Errorf("Count = %d, Summary = %q", resp.Count, resp.Summary)
	}

	// The exchange persists as one user and one assistant message.
	if len(uow.msgRepo.messages) != 2 {
		t.Fatalf("got %d stored messages, want 2", len(uow.msgRepo.messages))
	}
	if uow.msgRepo.messages[0].Role != constant.ChatMessageRoleUser {
		t.Errorf("first message role = %q", uow.msgRepo.messages[0].Role)
	}
	if uow.msgRepo.messages[1].Role != constant.ChatMessageRoleAssistant {
		t.Errorf("second message role = %q", uow.msgRepo.messages[1].Role)
	}

	// Title is derived from the first question once the exchange completed.
	conversation, _ := uow.convRepo.FindOne(context.Background(), specification.ByID{ID: resp.ConversationId})
	if conversation == nil {
		t.Fatal("conversation was not created")
	}
	if conversation.Title != "muéstrame los pedidos" {
		t.Errorf("Title = %q", conversation.Title)
	}
}

func TestQueryLongFirstQuestionTruncatesTitle(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)

	question := strings.Repeat("ventas ", 20) // well past the title cap
	resp, err := svc.Query(context.Background(), uuid.New(), &dto.ChatQueryRequest{Question: question})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	conversation, _ := uow.convRepo.FindOne(context.Background(), specification.ByID{ID: resp.ConversationId})
	if got := len([]rune(conversation.Title)); got != 50 {
		t.Errorf("title length = %d runes, want 50", got)
	}
	if !strings.HasSuffix(conversation.Title, "...") {
		t.Errorf("Title = %q, want ... suffix", conversation.Title)
	}
}

func TestQueryDangerousQuestionNotStored(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)

	for _, question := range []string{
		"delete all users",
		"elimina la tabla de usuarios",
	} {
		_, err := svc.Query(context.Background(), uuid.New(), &dto.ChatQueryRequest{Question: question})

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInputRejected {
			t.Fatalf("Query(%q) err = %v, want input_rejected", question, err)
		}
	}

	// A rejected question must leave no trace: no message, no conversation.
	if got := len(uow.msgRepo.messages); got != 0 {
		t.Errorf("got %d stored messages, want 0", got)
	}
	if count, _ := uow.convRepo.Count(context.Background()); count != 0 {
		t.Errorf("got %d conversations, want 0", count)
	}
	if fp.callCount() != 0 {
		t.Errorf("pipeline ran %d times, want 0", fp.callCount())
	}
}

func TestQueryEmptyQuestionRejected(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)

	_, err := svc.Query(context.Background(), uuid.New(), &dto.ChatQueryRequest{Question: "   "})

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInputRejected {
		t.Fatalf("err = %v, want input_rejected", err)
	}
	if got := len(uow.msgRepo.messages); got != 0 {
		t.Errorf("got %d stored messages, want 0", got)
	}
}

func TestQuerySchedulePhraseCreatesTask(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)
	userId := uuid.New()

	resp, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{
		Question: "cada 5 minutos, muéstrame los pedidos",
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if resp.ScheduledTaskId == nil {
		t.Fatal("ScheduledTaskId not set for a schedule phrase")
	}
	if fp.callCount() != 0 {
		t.Errorf("pipeline ran %d times, schedule phrases must not hit the model", fp.callCount())
	}

	task := uow.taskRepo.get(*resp.ScheduledTaskId)
	if task == nil {
		t.Fatal("task was not persisted")
	}
	if task.Question != "muéstrame los pedidos" {
		t.Errorf("task question = %q", task.Question)
	}
	if task.IntervalSeconds == nil || *task.IntervalSeconds != 300 {
		t.Errorf("IntervalSeconds = %v, want 300", task.IntervalSeconds)
	}
	if !task.Active {
		t.Error("new task must start active")
	}
	if task.ConversationId == nil || *task.ConversationId != resp.ConversationId {
		t.Errorf("task ConversationId = %v", task.ConversationId)
	}

	if !strings.Contains(resp.Summary, "Tarea programada") {
		t.Errorf("Summary = %q, want confirmation text", resp.Summary)
	}
	if len(uow.msgRepo.messages) != 2 {
		t.Errorf("got %d stored messages, want user question plus confirmation", len(uow.msgRepo.messages))
	}
}

func TestQuerySchedulePhraseWithoutQuestion(t *testing.T) {
	fp := &fakePipeline{}
	svc, _ := newChatFixture(fp, 100)

	_, err := svc.Query(context.Background(), uuid.New(), &dto.ChatQueryRequest{
		Question: "cada 5 minutos",
	})

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindScheduleInvalid {
		t.Fatalf("err = %v, want schedule_invalid", err)
	}
}

func TestQueryDailyQuotaExhausted(t *testing.T) {
	fp := &fakePipeline{}
	svc, _ := newChatFixture(fp, 2)
	userId := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"}); err != nil {
			t.Fatalf("Query() #%d error = %v", i+1, err)
		}
	}

	_, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindInputRejected {
		t.Fatalf("err = %v, want input_rejected once the quota runs out", err)
	}
	if fp.callCount() != 2 {
		t.Errorf("pipeline ran %d times, want 2", fp.callCount())
	}
}

func TestQueryPipelineErrorDoesNotBurnQuota(t *testing.T) {
	fp := &fakePipeline{err: apperrors.New(apperrors.KindProviderUnavailable, "El asistente no está disponible en este momento.")}
	svc, _ := newChatFixture(fp, 1)
	userId := uuid.New()

	_, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"})
	if err == nil {
		t.Fatal("Query() expected error")
	}

	// A failed answer must not consume the day's question.
	fp.err = nil
	if _, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"}); err != nil {
		t.Fatalf("Query() after failure error = %v", err)
	}
}

func TestGetConversationNotOwned(t *testing.T) {
	fp := &fakePipeline{}
	svc, _ := newChatFixture(fp, 100)

	owner := uuid.New()
	resp, err := svc.Query(context.Background(), owner, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	_, err = svc.GetConversation(context.Background(), uuid.New(), resp.ConversationId)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Kind != apperrors.KindNotFound {
		t.Fatalf("err = %v, want not_found for another user's conversation", err)
	}

	// The owner still sees it, messages in order.
	detail, err := svc.GetConversation(context.Background(), owner, resp.ConversationId)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if len(detail.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(detail.Messages))
	}
}

func TestDeleteConversation(t *testing.T) {
	fp := &fakePipeline{}
	svc, uow := newChatFixture(fp, 100)
	userId := uuid.New()

	resp, err := svc.Query(context.Background(), userId, &dto.ChatQueryRequest{Question: "muéstrame los pedidos"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if err := svc.DeleteConversation(context.Background(), userId, resp.ConversationId); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}

	conversation, _ := uow.convRepo.FindOne(context.Background(), specification.ByID{ID: resp.ConversationId})
	if conversation != nil {
		t.Error("conversation still present after delete")
	}

	if err := svc.DeleteConversation(context.Background(), userId, resp.ConversationId); err == nil {
		t.Error("deleting twice should report not found")
	}
}
