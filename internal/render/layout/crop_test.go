package layout

import (
	"math"
	"testing"
)

const tolerance = 1e-6

func TestSourceCropSquare(t *testing.T) {
	for _, side := range []int{1, 3, 512, 1024, 1999} {
		crop := SourceCrop(side, side)
		if math.Abs(crop.Ratio()-RatioW/RatioH) > tolerance {
			t.Fatalf("side %d: ratio %v, want 0.75", side, crop.Ratio())
		}
		if crop.H != float64(side) {
			t.Fatalf("side %d: crop height %v, want full height", side, crop.H)
		}
		if math.Abs(crop.X-(float64(side)-crop.W)/2) > tolerance || crop.Y != 0 {
			t.Fatalf("side %d: crop not centered: %+v", side, crop)
		}
	}
}

func TestSourceCropNonSquareUntouched(t *testing.T) {
	// Wide sources are not corrected; cover fit later clips the sides.
	for _, size := range [][2]int{{1920, 1080}, {1080, 1440}, {100, 4000}, {1025, 1024}} {
		crop := SourceCrop(size[0], size[1])
		if crop != (Rect{W: float64(size[0]), H: float64(size[1])}) {
			t.Fatalf("%dx%d: unexpected crop %+v", size[0], size[1], crop)
		}
	}
}

func TestCoverFitCoversCanvas(t *testing.T) {
	sources := [][2]int{{1024, 1024}, {1920, 1080}, {300, 4000}, {1, 1}, {1080, 1440}}
	for _, size := range sources {
		crop := SourceCrop(size[0], size[1])
		scale, dst := CoverFit(crop, 1080, 1440)
		if scale <= 0 {
			t.Fatalf("%v: non-positive scale %v", size, scale)
		}
		if dst.W+tolerance < 1080 || dst.H+tolerance < 1440 {
			t.Fatalf("%v: letterboxed destination %+v", size, dst)
		}
		if math.Abs(dst.X+dst.W/2-540) > tolerance || math.Abs(dst.Y+dst.H/2-720) > tolerance {
			t.Fatalf("%v: destination not centered %+v", size, dst)
		}
	}
}

func TestCoverFitWideSourceClipsSides(t *testing.T) {
	// Known outcome for a 16:9 source: height drives the scale, and the
	// left and right thirds fall outside the canvas.
	scale, dst := CoverFit(SourceCrop(1920, 1080), 1080, 1440)
	if math.Abs(scale-1440.0/1080.0) > tolerance {
		t.Fatalf("scale = %v", scale)
	}
	if math.Abs(dst.W-2560) > tolerance || math.Abs(dst.X+740) > tolerance {
		t.Fatalf("unexpected destination %+v", dst)
	}
}

func TestCoverFitEmpty(t *testing.T) {
	if scale, dst := CoverFit(Rect{}, 1080, 1440); scale != 0 || dst != (Rect{}) {
		t.Fatalf("expected zero result, got %v %+v", scale, dst)
	}
}
