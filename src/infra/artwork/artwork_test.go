package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int, asPNG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if asPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeKeepsSmallJPEGUntouched(t *testing.T) {
	data := encodeTestImage(t, 100, 100, false)

	out, mime, err := NewNormalizer(500).Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("a small jpeg should pass through unchanged")
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}
}

func TestNormalizeScalesDownOversizedImage(t *testing.T) {
	data := encodeTestImage(t, 800, 400, false)

	out, mime, err := NewNormalizer(200).Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("resized output does not decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 200 || bounds.Dy() != 100 {
		t.Errorf("expected 200x100 keeping aspect ratio, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizePNGStaysPNG(t *testing.T) {
	data := encodeTestImage(t, 600, 600, true)

	out, mime, err := NewNormalizer(300).Normalize(data, "image/png")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("png input should stay png, got %q", mime)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil || format != "png" {
		t.Fatalf("output should decode as png, got %q err %v", format, err)
	}
	if img.Bounds().Dx() != 300 {
		t.Errorf("expected width 300, got %d", img.Bounds().Dx())
	}
}

func TestNormalizeZeroMaxSizeDisablesScaling(t *testing.T) {
	data := encodeTestImage(t, 1500, 1500, false)

	out, _, err := NewNormalizer(0).Normalize(data, "image/jpeg")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("scaling disabled, image should pass through")
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, _, err := NewNormalizer(500).Normalize([]byte("not an image"), "image/jpeg"); err == nil {
		t.Error("garbage input must error")
	}
}
