package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/egruenh-co/lakner-inflation/internal/config"
)

// Manager provides file management operations relative to the configured
// directories
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.Resolve(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// WriteFile resolves path and writes it atomically with write
func (m *Manager) WriteFile(path string, write func(io.Writer) error) error {
	fullPath := m.Resolve(path)
	if err := WriteAtomic(fullPath, write); err != nil {
		return err
	}

	m.logger.Debug("File written",
		slog.String("path", path),
		slog.String("full_path", fullPath))
	return nil
}

// Resolve maps a path onto the configured directories. Absolute paths are
// returned unchanged; "reports/", "charts/" and "logs/" prefixes select
// the matching directory and anything else is taken as a report file.
func (m *Manager) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	switch {
	case strings.HasPrefix(path, "reports/"):
		return m.paths.GetReportPath(strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "charts/"):
		return m.paths.GetChartPath(strings.TrimPrefix(path, "charts/"))
	case strings.HasPrefix(path, "logs/"):
		return filepath.Join(m.paths.LogsDir, strings.TrimPrefix(path, "logs/"))
	default:
		return m.paths.GetReportPath(path)
	}
}

// WriteAtomic writes a file through a temporary sibling that is renamed
// onto path once write and close succeeded. The parent directory is
// created if needed. On failure path is left untouched.
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	// CreateTemp uses 0600
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
