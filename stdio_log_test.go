package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenStdioLog(t *testing.T) {
	f, err := openStdioLog("")
	if err != nil || f != nil {
		t.Fatalf("empty path: %v %v", f, err)
	}

	path := filepath.Join(t.TempDir(), "logs", "stdio.log")
	for i := 0; i < 2; i++ {
		f, err := openStdioLog(path)
		if err != nil {
			t.Fatalf("openStdioLog() error = %v", err)
		}
		f.Close()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), "--- carousel pid"); n != 2 {
		t.Fatalf("expected 2 start markers, got %d: %q", n, data)
	}
}
