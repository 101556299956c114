//go:build !linux

package display

import (
	"context"
	"errors"
	"image"
)

var errUnsupported = errors.New("framebuffer display is only supported on linux")

type Framebuffer struct {
	Logger Logger
}

func Open(path string) (*Framebuffer, error) { return nil, errUnsupported }

func (f *Framebuffer) Show(img image.Image) error { return errUnsupported }

func (f *Framebuffer) Close() error { return nil }

const KeyF4 = 62

func WatchKey(ctx context.Context, logger Logger, key uint16, fn func()) {}
