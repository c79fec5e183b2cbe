package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"ai-sqlchat-be/internal/config"
	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/controller"
	"ai-sqlchat-be/internal/model"
	"ai-sqlchat-be/internal/pkg/logger"
	"ai-sqlchat-be/internal/repository/memory"
	"ai-sqlchat-be/internal/repository/unitofwork"
	"ai-sqlchat-be/internal/service"
	"ai-sqlchat-be/pkg/llm/factory"
	pktNats "ai-sqlchat-be/pkg/nats"
	"ai-sqlchat-be/pkg/sqlchat/executor"
	"ai-sqlchat-be/pkg/sqlchat/pipeline"
	"ai-sqlchat-be/pkg/sqlchat/prompt"
	"ai-sqlchat-be/pkg/sqlchat/schema"
)

type Container struct {
	// Controllers
	ChatController          controller.IChatController
	ScheduledTaskController controller.IScheduledTaskController

	// Background Services (Exposed for main.go to run)
	TaskRunnerService service.ITaskRunnerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. NL-to-SQL Pipeline
	snapshot := schema.NewSnapshot(model.All())
	composer := prompt.NewComposer(cfg.App.Name, cfg.Chat.AdditionalRules)
	queryExecutor := executor.NewExecutor(db, sysLogger)
	questionPipeline := pipeline.NewPipeline(llmProvider, snapshot, composer, queryExecutor, sysLogger)

	// 5. Infrastructure
	// NATS is optional: without it, task outcome events are simply not
	// published.
	var outcomePublisher service.OutcomePublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		outcomePublisher = natsPub
	}

	quotaRepo := memory.NewQuotaRepository()

	// 6. Services
	chatService := service.NewChatService(
		uowFactory,
		questionPipeline,
		quotaRepo,
		cfg.Chat.DailyQuestionQuota,
		sysLogger,
	)
	scheduledTaskService := service.NewScheduledTaskService(uowFactory)
	taskRunnerService := service.NewTaskRunnerService(
		pubSub,
		constant.ScheduledTaskDueTopic,
		uowFactory,
		questionPipeline,
		outcomePublisher,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:          controller.NewChatController(chatService),
		ScheduledTaskController: controller.NewScheduledTaskController(scheduledTaskService),
		TaskRunnerService:       taskRunnerService,
		Logger:                  sysLogger,
	}
}
