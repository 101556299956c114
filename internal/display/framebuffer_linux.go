//go:build linux

package display

import (
	"errors"
	"image"
	"sync"

	fb "github.com/gonutz/framebuffer"
)

// Framebuffer draws images onto a framebuffer device.
type Framebuffer struct {
	Logger Logger

	mu      sync.Mutex
	dev     *fb.Device
	console bool
}

// Open opens the framebuffer at path, or DefaultDevice when path is empty.
func Open(path string) (*Framebuffer, error) {
	if path == "" {
		path = DefaultDevice
	}
	dev, err := fb.Open(path)
	if err != nil {
		return nil, err
	}
	f := &Framebuffer{dev: dev}
	f.console = setConsoleMode(true) == nil
	_ = setCursorVisible(false)
	return f, nil
}

// Show replaces the screen contents with img scaled to fit.
func (f *Framebuffer) Show(img image.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dev == nil {
		return errors.New("framebuffer closed")
	}
	blit(f.dev, img)
	if f.Logger != nil {
		b := f.dev.Bounds()
		f.Logger.Infof("fb", "shown %dx%d on %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), b.Dx(), b.Dy())
	}
	return nil
}

func (f *Framebuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dev == nil {
		return nil
	}
	f.dev.Close()
	f.dev = nil
	_ = setCursorVisible(true)
	if f.console {
		return setConsoleMode(false)
	}
	return nil
}
