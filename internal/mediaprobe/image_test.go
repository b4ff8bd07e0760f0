package mediaprobe

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestProbeImageDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")

	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	img.Set(0, 0, color.White)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	w, h, ok := ProbeImageDimensions(path)
	if !ok {
		t.Fatal("expected ok=true for a valid png")
	}
	if w != 12 || h != 7 {
		t.Fatalf("got %dx%d, want 12x7", w, h)
	}
}

func TestProbeImageDimensionsMissingFile(t *testing.T) {
	_, _, ok := ProbeImageDimensions(filepath.Join(t.TempDir(), "nope.png"))
	if ok {
		t.Fatal("expected ok=false for a missing file")
	}
}
