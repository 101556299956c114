//go:build linux

package display

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	// KeyF4 from linux input-event-codes.h.
	KeyF4 = 62
)

// WatchKey calls fn once when key is pressed on any evdev keyboard. It lets a
// kiosk showing slides be stopped without a terminal. Without input devices
// it logs and returns.
func WatchKey(ctx context.Context, logger Logger, key uint16, fn func()) {
	if fn == nil {
		return
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found")
		}
		return
	}

	var once sync.Once
	fire := func() {
		once.Do(func() {
			if logger != nil {
				logger.Infof("input", "key %d pressed", key)
			}
			fn()
		})
	}

	for _, path := range paths {
		go readKeys(ctx, path, tvSize, eventSize, key, fire)
	}
}

func readKeys(ctx context.Context, path string, tvSize, eventSize int, key uint16, fire func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 4096)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if keyPressed(buf[:n], tvSize, eventSize, key) {
			fire()
			return
		}
	}
}

// keyPressed scans a batch of input_event records for a key-down of key.
func keyPressed(buf []byte, tvSize, eventSize int, key uint16) bool {
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ == evKey && code == key && value == 1 {
			return true
		}
	}
	return false
}
