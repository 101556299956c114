//go:build linux

package display

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var consolePaths = []string{"/dev/tty", "/dev/tty0"}

// setConsoleMode switches the active virtual terminal between text and
// graphics mode. Graphics mode stops the console from drawing its cursor and
// messages over the slide.
func setConsoleMode(graphics bool) error {
	mode, name := kdText, "KD_TEXT"
	if graphics {
		mode, name = kdGraphics, "KD_GRAPHICS"
	}
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("%s on %s: %w", name, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

// setCursorVisible writes the ANSI cursor escape to the active VT.
func setCursorVisible(visible bool) error {
	seq := "\x1b[?25l"
	if visible {
		seq = "\x1b[?25h"
	}
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(seq)
		f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT: %w", lastErr)
}
