package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestRenderOriginalOnZeroSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	writeTestPNG(t, path, 400, 300)

	out, err := Render(path, 0)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 300 {
		t.Fatalf("got %dx%d, want original 400x300", cfg.Width, cfg.Height)
	}
}

func TestRenderResizesWithinBoundingBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	writeTestPNG(t, path, 400, 200)

	out, err := Render(path, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width > 100 || cfg.Height > 100 {
		t.Fatalf("got %dx%d, want both dimensions <= 100", cfg.Width, cfg.Height)
	}
	if cfg.Width != 100 {
		t.Errorf("expected the longest side to hit the cap exactly, got %d", cfg.Width)
	}
}

func TestRenderBytesDecodesFromMemory(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := RenderBytes(buf.Bytes(), 0)
	if err != nil {
		t.Fatalf("RenderBytes: %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Fatalf("got %dx%d, want original 200x100", cfg.Width, cfg.Height)
	}
}
