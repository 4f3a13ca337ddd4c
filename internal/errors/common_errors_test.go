package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewConfigError("base period out of range", nil),
			expected: "[CONFIG] base period out of range",
		},
		{
			name:     "with cause",
			err:      NewStorageError("failed to write results", errors.New("disk full")),
			expected: "[STORAGE] failed to write results: disk full",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("bio_umsatz_real.csv", nil),
			expected: "[NOT_FOUND] bio_umsatz_real.csv not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Constructors(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name     string
		err      *AppError
		expected ErrorType
	}{
		{"parsing", NewParsingError("bad row", cause), ErrTypeParsing},
		{"storage", NewStorageError("write", cause), ErrTypeStorage},
		{"validation", NewAppValidationError("bad value", cause), ErrTypeValidation},
		{"not found", NewNotFoundError("file", cause), ErrTypeNotFound},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig},
		{"calculation", NewCalculationError("index", cause), ErrTypeCalculation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Type)
			assert.Same(t, cause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_UnwrapReachesSentinels(t *testing.T) {
	inner := fmt.Errorf("loading sales: %w", inflation.ErrInvalidInput)
	err := NewParsingError("bio_umsatz_real.csv: row 3", inner)

	assert.True(t, errors.Is(err, inflation.ErrInvalidInput))

	wrapped := fmt.Errorf("run: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, err, appErr)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad row"}
	got := err.WithContext("file", "x.csv").WithContext("row", 4)

	assert.Same(t, err, got)
	assert.Equal(t, map[string]interface{}{"file": "x.csv", "row": 4}, err.Context)
}

func TestAppError_AttrsSortedByKey(t *testing.T) {
	err := NewParsingError("bad number", nil).
		WithContext("path", "data/bio_umsatz_nominal.csv").
		WithContext("column", 2).
		WithContext("line", 5)

	attrs := err.Attrs()
	require.Len(t, attrs, 3)
	assert.Equal(t, "column", attrs[0].Key)
	assert.Equal(t, "line", attrs[1].Key)
	assert.Equal(t, "path", attrs[2].Key)
	assert.Equal(t, int64(5), attrs[1].Value.Int64())

	assert.Empty(t, (&AppError{Type: ErrTypeInternal}).Attrs())
}

func TestAsAppError_NotPresent(t *testing.T) {
	_, ok := AsAppError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}
