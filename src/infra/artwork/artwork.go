package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Normalizer prepares fetched cover images for embedding: oversized
// images are scaled down to fit maxSize while keeping aspect ratio, and
// webp/gif sources are re-encoded as JPEG since tag containers expect
// jpeg or png.
type Normalizer struct {
	maxSize int
	quality int
}

// NewNormalizer creates a Normalizer. A maxSize of 0 disables scaling.
func NewNormalizer(maxSize int) *Normalizer {
	return &Normalizer{maxSize: maxSize, quality: 85}
}

// Normalize returns the image bytes to embed together with their MIME
// type.
func (n *Normalizer) Normalize(data []byte, declaredMime string) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode cover image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	fits := n.maxSize <= 0 || (width <= n.maxSize && height <= n.maxSize)

	// Already embeddable as-is: right format and small enough.
	if fits && (format == "jpeg" || format == "png") {
		return data, mimeForFormat(format, declaredMime), nil
	}

	if !fits {
		if width > height {
			height = height * n.maxSize / width
			width = n.maxSize
		} else {
			width = width * n.maxSize / height
			height = n.maxSize
		}
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode resized cover: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode resized cover: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func mimeForFormat(format, declaredMime string) string {
	switch format {
	case "png":
		return "image/png"
	case "jpeg":
		return "image/jpeg"
	}
	if strings.HasPrefix(declaredMime, "image/") {
		return declaredMime
	}
	return "image/jpeg"
}
