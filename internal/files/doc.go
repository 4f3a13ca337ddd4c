// Package files provides the file system operations shared by the loader
// and the exporters.
//
// Discovery lists the input tables present in a directory; a run uses it
// to tell the user what it found when an expected input is missing.
//
// Manager resolves output paths against the configured directories and
// writes files atomically: content goes to a hidden temporary file in the
// target directory and is renamed into place only after it was written
// completely, so a failed run never leaves a truncated report behind.
//
// Example usage:
//
//	manager := files.NewManager(paths, logger)
//	err := manager.WriteFile("reports/summary.json", func(w io.Writer) error {
//	    return json.NewEncoder(w).Encode(summary)
//	})
//
//	tables, err := files.NewDiscovery(paths.DataDir).FindTables("")
package files
