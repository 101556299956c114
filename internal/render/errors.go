package render

import (
	"errors"
	"fmt"
)

// ErrFontNotRegistered is returned by a FontProvider for an unknown role.
var ErrFontNotRegistered = errors.New("font not registered")

var errEmptyImage = errors.New("image has no pixels")

// LoadError reports a background that is missing or cannot be decoded.
// The composition is abandoned and no output is produced.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load background: %v", e.Err)
	}
	return fmt.Sprintf("load background %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InvariantViolation means the color draw exceeded its retry cap, which only
// happens when the palette or the color memory is corrupt.
type InvariantViolation struct {
	Role     Role
	Attempts int
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("color selector: no admissible %s color after %d attempts", e.Role, e.Attempts)
}
