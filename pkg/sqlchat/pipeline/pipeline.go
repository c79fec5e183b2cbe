package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-sqlchat-be/internal/constant"
	"ai-sqlchat-be/internal/pkg/apperrors"
	"ai-sqlchat-be/internal/pkg/logger"
	"ai-sqlchat-be/pkg/llm"
	"ai-sqlchat-be/pkg/sqlchat/executor"
	"ai-sqlchat-be/pkg/sqlchat/history"
	"ai-sqlchat-be/pkg/sqlchat/intent"
	"ai-sqlchat-be/pkg/sqlchat/prompt"
	"ai-sqlchat-be/pkg/sqlchat/safety"
	"ai-sqlchat-be/pkg/sqlchat/schema"
)

const (
	OutcomeSqlResult = "sql_result"
	OutcomeTextOnly  = "text_only"

	generationMaxTokens = 800
	narrationMaxTokens  = 500
	modelTemperature    = 0.1

	fallbackSummary = "Aquí están los resultados de tu consulta."
)

// Outcome is the answer to one question, either a query result with a
// narrated summary or a direct text reply built from conversation context.
type Outcome struct {
	Kind               string
	Sql                string
	Columns            []string
	Rows               []map[string]any
	Summary            string
	Text               string
	SuggestedQuestions []string
}

// Pipeline chains input filtering, prompt composition, the LLM round trips,
// SQL validation and execution into a single Answer call.
type Pipeline struct {
	provider llm.LLMProvider
	snapshot *schema.Snapshot
	composer *prompt.Composer
	executor *executor.Executor
	log      logger.ILogger
}

func NewPipeline(provider llm.LLMProvider, snapshot *schema.Snapshot, composer *prompt.Composer, exec *executor.Executor, log logger.ILogger) *Pipeline {
	return &Pipeline{
		provider: provider,
		snapshot: snapshot,
		composer: composer,
		executor: exec,
		log:      log,
	}
}

func (p *Pipeline) Answer(ctx context.Context, question string, turns []history.Turn) (*Outcome, error) {
	question = truncateRunes(question, constant.MaxQuestionLength)
	if question == "" {
		return nil, apperrors.InputRejected("La pregunta no puede estar vacía.")
	}
	if err := safety.CheckQuestion(question); err != nil {
		return nil, err
	}

	schemaText, err := p.snapshot.Describe()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExecutionFailed,
			"No se pudo leer la estructura de la base de datos.", err)
	}

	generationPrompt := p.composer.Generation(question, schemaText, history.Build(turns))

	raw, err := p.provider.Generate(ctx, generationPrompt,
		llm.WithTemperature(modelTemperature),
		llm.WithMaxTokens(generationMaxTokens),
		llm.WithSafetyRelaxed(),
	)
	if err != nil {
		return nil, mapProviderErr(err)
	}

	parsed := intent.Interpret(raw)
	switch parsed.Kind {
	case intent.KindSql:
		return p.answerWithQuery(ctx, question, parsed)
	case intent.KindText:
		return &Outcome{
			Kind:               OutcomeTextOnly,
			Text:               parsed.Answer,
			SuggestedQuestions: parsed.SuggestedQuestions,
		}, nil
	default:
		p.log.Warn("Pipeline", "unparseable llm response", map[string]interface{}{
			"response_preview": truncateRunes(raw, 200),
		})
		return nil, apperrors.New(apperrors.KindIntentUnparseable,
			"No se pudo interpretar la respuesta del asistente. Intenta reformular tu pregunta.")
	}
}

func (p *Pipeline) answerWithQuery(ctx context.Context, question string, parsed intent.Intent) (*Outcome, error) {
	sql, err := safety.ValidateAndNormalize(parsed.Sql)
	if err != nil {
		return nil, err
	}

	result, err := p.executor.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Kind:               OutcomeSqlResult,
		Sql:                sql,
		Columns:            result.Columns,
		Rows:               result.Rows,
		Summary:            p.narrate(ctx, question, sql, result.Rows),
		SuggestedQuestions: parsed.SuggestedQuestions,
	}, nil
}

// narrate asks the model to summarize the rows. A failure here never fails
// the whole answer; the rows are already in hand.
func (p *Pipeline) narrate(ctx context.Context, question, sql string, rows []map[string]any) string {
	narrationPrompt, err := p.composer.Narration(question, sql, rows)
	if err != nil {
		p.log.Warn("Pipeline", "narration prompt build failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fallbackSummary
	}

	summary, err := p.provider.Generate(ctx, narrationPrompt,
		llm.WithTemperature(modelTemperature),
		llm.WithMaxTokens(narrationMaxTokens),
	)
	if err != nil || summary == "" {
		if err != nil {
			p.log.Warn("Pipeline", "narration call failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return fallbackSummary
	}
	return summary
}

func mapProviderErr(err error) error {
	var blocked *llm.BlockedError
	if errors.As(err, &blocked) {
		return apperrors.Wrap(apperrors.KindProviderBlocked,
			fmt.Sprintf("El asistente bloqueó la respuesta por políticas de contenido (%s).", blocked.Reason), err)
	}
	var truncated *llm.TruncatedError
	if errors.As(err, &truncated) {
		return apperrors.Wrap(apperrors.KindProviderTruncated,
			"La respuesta del asistente quedó incompleta. Intenta una pregunta más corta.", err)
	}
	return apperrors.Wrap(apperrors.KindProviderUnavailable,
		"El asistente no está disponible en este momento. Intenta de nuevo más tarde.", err)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return strings.TrimSpace(string(runes))
}
