package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// openStdioLog opens path for appending and marks the start of this process.
// An empty path returns a nil file.
func openStdioLog(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(f, "--- carousel pid %d started %s ---\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return f, nil
}
