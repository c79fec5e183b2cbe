package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-sqlchat-be/internal/pkg/apperrors"
)

// ErrorHandlerMiddleware translates domain errors into HTTP responses so
// controllers can just return them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return ctx.Status(statusForKind(appErr.Kind)).JSON(FailureResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(FailureResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(FailureResponse("Internal server error"))
	}
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInputRejected, apperrors.KindSqlRejected, apperrors.KindScheduleInvalid:
		return fiber.StatusBadRequest
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindProviderBlocked, apperrors.KindIntentUnparseable:
		return fiber.StatusUnprocessableEntity
	case apperrors.KindProviderTruncated, apperrors.KindProviderUnavailable:
		return fiber.StatusBadGateway
	case apperrors.KindExecutionFailed:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
