// Package media decodes result assets and builds type-correct placeholder
// outputs for failed runs.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrEmptyAsset is returned when an asset payload has no bytes.
var ErrEmptyAsset = errors.New("asset payload is empty")

// DecodeImage decodes image bytes into an image.Image. It accepts any format
// the imaging codecs understand (PNG, JPEG, GIF, TIFF, BMP).
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAsset
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG encodes an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// BlankImage returns a solid near-black image of the given size. Dimensions
// below 1 are clamped so the result is always drawable.
func BlankImage(width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return imaging.New(width, height, color.NRGBA{R: 16, G: 16, B: 16, A: 255})
}
