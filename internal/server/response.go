package server

import (
	"errors"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response is the JSON envelope of every API reply.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) Response[any] {
	return Response[any]{Success: false, Message: message}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		fiberErr  *fiber.Error
		normErr   *normalize.NormalizationError
		remoteErr *models.RemoteCallError
		valErrs   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &normErr):
		if normErr.Kind == normalize.KindTooLarge {
			return fiber.StatusRequestEntityTooLarge
		}
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &remoteErr):
		return fiber.StatusBadGateway
	case errors.As(err, &valErrs),
		errors.Is(err, analyst.ErrEmptyPrompt),
		errors.Is(err, analyst.ErrUnknownPersona):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}
		return c.Status(code).JSON(ErrorResponse(err.Error()))
	}
}
