package errors

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"runtime/debug"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// Exit codes returned by Handler
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Handler turns errors that reach the top of the CLI into a log record and
// an exit code
type Handler struct {
	logger       *slog.Logger
	includeStack bool
	hints        map[ErrorType]string
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger, includeStack bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
		hints:        make(map[ErrorType]string),
	}
}

// SetHint registers an operator hint logged with every error of type t
func (h *Handler) SetHint(t ErrorType, hint string) {
	h.hints[t] = hint
}

// Classify maps an error chain to an ErrorType. An explicit AppError wins;
// otherwise well-known causes are recognised.
func (h *Handler) Classify(err error) ErrorType {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrTypeCanceled
	case errors.Is(err, fs.ErrNotExist):
		return ErrTypeNotFound
	case errors.Is(err, inflation.ErrInvalidInput):
		return ErrTypeValidation
	case errors.Is(err, inflation.ErrDivisionByZero), errors.Is(err, inflation.ErrInsufficientData):
		return ErrTypeCalculation
	default:
		return ErrTypeInternal
	}
}

// Handle logs err and returns the process exit code
func (h *Handler) Handle(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	errType := h.Classify(err)
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("error_type", string(errType)),
	}

	if appErr, ok := AsAppError(err); ok {
		for _, a := range appErr.Attrs() {
			attrs = append(attrs, a)
		}
	}

	var calcErr *inflation.CalculationError
	if errors.As(err, &calcErr) && calcErr.Period != 0 {
		attrs = append(attrs, slog.Int("period", calcErr.Period))
	}

	if hint, ok := h.hints[errType]; ok {
		attrs = append(attrs, slog.String("hint", hint))
	}

	if errType == ErrTypeCanceled {
		h.logger.WarnContext(ctx, "analysis cancelled", attrs...)
	} else {
		h.logger.ErrorContext(ctx, "analysis failed", attrs...)
	}

	return ExitFailure
}

// HandlePanic logs a recovered panic and returns the process exit code
func (h *Handler) HandlePanic(ctx context.Context, recovered interface{}) int {
	attrs := []any{slog.Any("panic", recovered)}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	h.logger.ErrorContext(ctx, "panic recovered", attrs...)
	return ExitFailure
}
