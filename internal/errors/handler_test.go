package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

func newTestHandler(buf *bytes.Buffer) *Handler {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewHandler(logger, false)
}

func TestHandler_Classify(t *testing.T) {
	h := NewHandler(nil, false)

	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"nil", nil, ""},
		{"explicit app error wins", NewParsingError("row 2", inflation.ErrInvalidInput), ErrTypeParsing},
		{"cancelled", fmt.Errorf("load: %w", context.Canceled), ErrTypeCanceled},
		{"deadline", context.DeadlineExceeded, ErrTypeCanceled},
		{"missing file", &fs.PathError{Op: "open", Path: "x.csv", Err: fs.ErrNotExist}, ErrTypeNotFound},
		{"invalid input", fmt.Errorf("implied index: %w", inflation.ErrInvalidInput), ErrTypeValidation},
		{"division by zero", &inflation.CalculationError{Kind: inflation.ErrDivisionByZero, Period: 2021}, ErrTypeCalculation},
		{"insufficient data", inflation.ErrInsufficientData, ErrTypeCalculation},
		{"unknown", errors.New("boom"), ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.Classify(tt.err))
		})
	}
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf)
	h.SetHint(ErrTypeNotFound, "place the input files in the data directory")

	assert.Equal(t, ExitOK, h.Handle(context.Background(), nil))
	assert.Zero(t, buf.Len())

	err := NewNotFoundError("bio_umsatz_nominal.csv", fs.ErrNotExist).WithContext("path", "/data/bio_umsatz_nominal.csv")
	code := h.Handle(context.Background(), err)
	assert.Equal(t, ExitFailure, code)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "analysis failed", record["msg"])
	assert.Equal(t, "NOT_FOUND", record["error_type"])
	assert.Equal(t, "error_handler", record["component"])
	assert.Equal(t, "/data/bio_umsatz_nominal.csv", record["path"])
	assert.Equal(t, "place the input files in the data directory", record["hint"])
}

func TestHandler_HandleLogsPeriod(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf)

	err := fmt.Errorf("implied index: %w", &inflation.CalculationError{
		Kind:   inflation.ErrDivisionByZero,
		Period: 2022,
		Field:  "real_value",
		Value:  0.0,
	})
	assert.Equal(t, ExitFailure, h.Handle(context.Background(), err))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "CALCULATION", record["error_type"])
	assert.EqualValues(t, 2022, record["period"])
	assert.NotContains(t, record, "hint")
}

func TestHandler_HandleCancelledIsWarning(t *testing.T) {
	var buf bytes.Buffer
	h := newTestHandler(&buf)

	assert.Equal(t, ExitFailure, h.Handle(context.Background(), context.Canceled))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
}

func TestHandler_HandlePanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := NewHandler(logger, true)

	assert.Equal(t, ExitFailure, h.HandlePanic(context.Background(), "index out of range"))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "panic recovered", record["msg"])
	assert.Equal(t, "index out of range", record["panic"])
	assert.Contains(t, record["stack"], "goroutine")
}
