package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/config"
)

func testPaths(root string) *config.Paths {
	return &config.Paths{
		DataDir:    filepath.Join(root, "data"),
		ReportsDir: filepath.Join(root, "reports"),
		ChartsDir:  filepath.Join(root, "charts"),
		LogsDir:    filepath.Join(root, "logs"),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_Resolve(t *testing.T) {
	root := t.TempDir()
	manager := NewManager(testPaths(root), quietLogger())

	tests := []struct {
		path string
		want string
	}{
		{"reports/results.csv", filepath.Join(root, "reports", "results.csv")},
		{"charts/analysis.png", filepath.Join(root, "charts", "analysis.png")},
		{"logs/run.log", filepath.Join(root, "logs", "run.log")},
		{"summary.json", filepath.Join(root, "reports", "summary.json")},
		{filepath.Join(root, "elsewhere", "x.csv"), filepath.Join(root, "elsewhere", "x.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, manager.Resolve(tt.path))
		})
	}
}

func TestManager_WriteFile(t *testing.T) {
	root := t.TempDir()
	manager := NewManager(testPaths(root), nil)

	assert.False(t, manager.FileExists("reports/out.txt"))
	err := manager.WriteFile("reports/out.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)
	assert.True(t, manager.FileExists("reports/out.txt"))

	data, err := os.ReadFile(filepath.Join(root, "reports", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteAtomic_KeepsOldContentOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	boom := errors.New("boom")
	err := WriteAtomic(path, func(w io.Writer) error {
		fmt.Fprint(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be removed")
}

func TestWriteAtomic_ReplacesAndCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "summary.json")

	for _, content := range []string{"first", "second"} {
		require.NoError(t, WriteAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		}))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}
