//go:build !unix

package main

import "os"

// Panics written by the runtime still reach the inherited stderr here.
func redirectStdIO(path string) error {
	f, err := openStdioLog(path)
	if err != nil || f == nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
