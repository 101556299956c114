package render

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxColorAttempts bounds the rejection sampling in ColorSelector. With at most
// two excluded entries out of twenty it is never reached in practice.
const MaxColorAttempts = 1000

var paletteHex = [...]string{
	"#FF6B6B", // red
	"#4ECDC4", // turquoise
	"#45B7D1", // blue
	"#FFA07A", // salmon
	"#98D8C8", // mint
	"#FFD93D", // yellow
	"#6BCF7F", // green
	"#C7B3FF", // pale purple
	"#FF8FAB", // pink
	"#95E1D3", // aqua
	"#F38181", // coral
	"#AA96DA", // purple
	"#FCBAD3", // rose
	"#A8E6CF", // lime green
	"#FFD3B6", // peach
	"#FFAAA5", // light coral
	"#FF8B94", // rose red
	"#A8D8EA", // sky blue
	"#AA7DCE", // lavender
	"#FFC8DD", // light pink
}

// minPaletteDistance is the smallest CIE Lab distance allowed between two
// palette entries, so consecutive captions never look alike.
const minPaletteDistance = 0.01

// Palette is the fixed set of caption colors shared by both roles.
var Palette = mustParsePalette(paletteHex[:])

func mustParsePalette(hexes []string) []color.RGBA {
	out, err := parsePalette(hexes)
	if err != nil {
		panic(err)
	}
	return out
}

func parsePalette(hexes []string) ([]color.RGBA, error) {
	parsed := make([]colorful.Color, 0, len(hexes))
	out := make([]color.RGBA, 0, len(hexes))
	for _, hex := range hexes {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %s: %w", hex, err)
		}
		for i, prev := range parsed {
			if d := c.DistanceLab(prev); d < minPaletteDistance {
				return nil, fmt.Errorf("palette entry %s too close to %s (%.4f)", hex, hexes[i], d)
			}
		}
		parsed = append(parsed, c)
		r, g, b := c.RGB255()
		out = append(out, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return out, nil
}

type lastColor struct {
	c  color.RGBA
	ok bool
}

// ColorSelector picks caption colors so that no role repeats its previous
// color and the two roles never share a color. One selector is shared by all
// compositions of a run; it is safe for concurrent use.
type ColorSelector struct {
	mu      sync.Mutex
	rng     *rand.Rand
	palette []color.RGBA
	last    [2]lastColor
}

// NewColorSelector returns a selector over Palette. A nil src uses the
// runtime's randomly seeded generator.
func NewColorSelector(src rand.Source) *ColorSelector {
	s := &ColorSelector{palette: Palette}
	if src != nil {
		s.rng = rand.New(src)
	}
	return s
}

// Pick draws a color for role and records it as the role's last color.
func (s *ColorSelector) Pick(role Role) (color.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickLocked(role)
}

// PickPair draws the title color and then the content color under one lock,
// so concurrent compositions never interleave their draws.
func (s *ColorSelector) PickPair() (title, content color.RGBA, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if title, err = s.pickLocked(RoleTitle); err != nil {
		return color.RGBA{}, color.RGBA{}, err
	}
	if content, err = s.pickLocked(RoleContent); err != nil {
		return color.RGBA{}, color.RGBA{}, err
	}
	return title, content, nil
}

// Last returns the most recent color picked for role.
func (s *ColorSelector) Last(role Role) (color.RGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.last[role]
	return last.c, last.ok
}

func (s *ColorSelector) pickLocked(role Role) (color.RGBA, error) {
	own, other := s.last[role], s.last[role.other()]
	for attempt := 0; attempt < MaxColorAttempts; attempt++ {
		candidate := s.palette[s.intn(len(s.palette))]
		if own.ok && candidate == own.c {
			continue
		}
		if other.ok && candidate == other.c {
			continue
		}
		s.last[role] = lastColor{c: candidate, ok: true}
		return candidate, nil
	}
	return color.RGBA{}, &InvariantViolation{Role: role, Attempts: MaxColorAttempts}
}

func (s *ColorSelector) intn(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}
