package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/config"
)

func decodeLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		out = append(out, record)
	}
	return out
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, "", &buf)
	require.NoError(t, err)
	assert.Nil(t, file)

	logger.Debug("hidden")
	logger.Info("loaded sales", "records", 5)

	records := decodeLines(t, buf.Bytes())
	require.Len(t, records, 1)
	assert.Equal(t, "loaded sales", records[0]["msg"])
	assert.EqualValues(t, 5, records[0]["records"])
	assert.NotContains(t, records[0], "source", "source only at debug level")
}

func TestNewLogger_RunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"}, "", &buf)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run id")
	logger.With("component", "loader").WithGroup("sales").InfoContext(ctx, "grouped", "rows", 3)
	logger.Info("without context")

	records := decodeLines(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, "run-123", records[0]["run_id"])
	assert.Equal(t, "loader", records[1]["component"])
	assert.NotContains(t, records[2], "run_id")
	assert.Contains(t, records[0], "source")
}

func TestNewLogger_FileOutputs(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		wantConsole bool
	}{
		{"file only", "file", false},
		{"both", "both", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			path := filepath.Join(t.TempDir(), "logs", "run.log")

			logger, file, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: tt.output}, path, &buf)
			require.NoError(t, err)
			require.NotNil(t, file)

			logger.Info("written")
			require.NoError(t, file.Close())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"msg":"written"`)
			assert.Equal(t, tt.wantConsole, buf.Len() > 0)
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "text"}, "", &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "period", 2021)

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "msg=kept")
	assert.Contains(t, out, "period=2021")
}

func TestNewLogger_FileErrors(t *testing.T) {
	_, _, err := NewLogger(config.LoggingConfig{Output: "file"}, "", &bytes.Buffer{})
	assert.Error(t, err)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, _, err = NewLogger(config.LoggingConfig{Output: "both"}, filepath.Join(blocker, "app.log"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestInitializeLogger(t *testing.T) {
	prev := slog.Default()
	ResetLoggerForTesting()
	t.Cleanup(func() {
		ResetLoggerForTesting()
		slog.SetDefault(prev)
	})

	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file"}, path, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	again, err := InitializeLogger(config.LoggingConfig{Level: "debug"}, "", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Same(t, logger, again, "second call is a no-op")

	require.NoError(t, CloseLogFile())
	require.NoError(t, CloseLogFile())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("WARNING").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}

func TestRunIDHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	ctx = EnsureRunID(ctx)
	id := GetRunID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)), "existing id is kept")
	assert.NotEqual(t, NewRunID(), NewRunID())

	var buf bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Format: "json"}, "", &buf)
	require.NoError(t, err)
	WithComponent(logger, "exporter").Info("x")
	assert.Contains(t, buf.String(), `"component":"exporter"`)
}
