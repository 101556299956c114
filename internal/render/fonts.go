package render

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontProvider resolves the font registered for a caption role.
type FontProvider interface {
	Resolve(role Role) (*opentype.Font, error)
}

// FontRegistry is a FontProvider backed by an explicit role table.
type FontRegistry struct {
	mu    sync.RWMutex
	fonts map[Role]*opentype.Font
}

func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fonts: make(map[Role]*opentype.Font)}
}

// DefaultFonts registers the Go fonts: bold for titles, regular for content.
// They have no CJK coverage and serve as a fallback and in tests.
func DefaultFonts() *FontRegistry {
	reg := NewFontRegistry()
	for role, data := range map[Role][]byte{RoleTitle: gobold.TTF, RoleContent: goregular.TTF} {
		f, err := opentype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("parse embedded %s font: %v", role, err))
		}
		reg.Register(role, f)
	}
	return reg
}

func (r *FontRegistry) Register(role Role, f *opentype.Font) {
	r.mu.Lock()
	r.fonts[role] = f
	r.mu.Unlock()
}

// RegisterFile parses the font file at path and registers it for role.
// index selects the face inside a collection (.ttc/.otc) and is ignored otherwise.
func (r *FontRegistry) RegisterFile(role Role, path string, index int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f, err := ParseFont(data, index)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	r.Register(role, f)
	return nil
}

func (r *FontRegistry) Resolve(role Role) (*opentype.Font, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fonts[role]
	if !ok {
		return nil, fmt.Errorf("%s: %w", role, ErrFontNotRegistered)
	}
	return f, nil
}

// ParseFont parses a single font or one face of a font collection.
func ParseFont(data []byte, index int) (*opentype.Font, error) {
	if !bytes.HasPrefix(data, []byte("ttcf")) {
		return opentype.Parse(data)
	}
	collection, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= collection.NumFonts() {
		return nil, fmt.Errorf("collection index %d out of range [0,%d)", index, collection.NumFonts())
	}
	return collection.Font(index)
}
