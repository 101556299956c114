package render

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the webp decoder for backgrounds
)

// LoadBackground opens and decodes the background at path, applying EXIF
// orientation. Failures are reported as *LoadError.
func LoadBackground(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &LoadError{Path: path, Err: errEmptyImage}
	}
	return img, nil
}

// DecodeBackground decodes a background from r. Failures are reported as *LoadError.
func DecodeBackground(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &LoadError{Err: errEmptyImage}
	}
	return img, nil
}
