package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"

	_ "image/gif"
	_ "image/png"
)

// MaxThumbSide bounds the longest side of a generated preview.
const MaxThumbSide = 480

// defaultQuality is the JPEG quality used for previews.
const defaultQuality = 85

// Decode decodes image bytes using the registered decoders, with an explicit
// WebP fallback for encodings the standard decoder rejects.
func Decode(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// DataURL renders image bytes into a displayable preview: decoded, downscaled
// to MaxThumbSide on the long side, JPEG-encoded, and wrapped as a base64
// data URL.
func DataURL(data []byte) (string, error) {
	img, err := Decode(data)
	if err != nil {
		return "", err
	}

	img = bound(img, MaxThumbSide)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: defaultQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// PrepareUpload re-encodes image bytes as JPEG with the long side bounded by
// maxDim. maxDim <= 0 returns the bytes untouched: the file is sent exactly
// as selected.
func PrepareUpload(data []byte, maxDim, quality int) ([]byte, error) {
	if maxDim <= 0 {
		return data, nil
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	img = bound(img, maxDim)

	if quality < 1 || quality > 100 {
		quality = defaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// bound downscales img so its long side is at most maxDim. Smaller images
// pass through unchanged.
func bound(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}
