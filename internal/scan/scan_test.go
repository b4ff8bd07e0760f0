package scan

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mipimipi/musicd/internal/catalog"
)

func newTestCatalog(t *testing.T, roots []catalog.Root) (*catalog.Source, *catalog.Catalog) {
	t.Helper()

	source, err := catalog.OpenSource(filepath.Join(t.TempDir(), "catalog.db"), roots)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	cat, err := source.Open()
	if err != nil {
		t.Fatalf("source.Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	return source, cat
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create '%s': %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode '%s': %v", path, err)
	}
}

func TestRunCreatesNodesForDirectoryAndImage(t *testing.T) {
	musicDir := t.TempDir()
	albumDir := filepath.Join(musicDir, "My Album")
	if err := os.Mkdir(albumDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writePNG(t, filepath.Join(albumDir, "folder.jpg"), 10, 10)

	roots := []catalog.Root{{Name: "music", Path: musicDir}}
	_, cat := newTestCatalog(t, roots)

	if err := cat.ResetAlbumImagePatterns(); err != nil {
		t.Fatalf("ResetAlbumImagePatterns: %v", err)
	}

	if err := run(cat, make(chan struct{})); err != nil {
		t.Fatalf("run: %v", err)
	}

	rootNode, ok, err := cat.NodeByName(nil, "music")
	if err != nil || !ok {
		t.Fatalf("expected root node to exist, ok=%v err=%v", ok, err)
	}
	if rootNode.Type != catalog.NodeDirectory {
		t.Fatalf("expected root node to be a directory")
	}

	albumNode, ok, err := cat.NodeByName(&rootNode.ID, "My Album")
	if err != nil || !ok {
		t.Fatalf("expected album node to exist, ok=%v err=%v", ok, err)
	}

	imageNode, ok, err := cat.NodeByName(&albumNode.ID, "folder.jpg")
	if err != nil || !ok {
		t.Fatalf("expected image node to exist, ok=%v err=%v", ok, err)
	}

	var imageID int64
	if err := cat.DB().QueryRow("SELECT image_id FROM Image WHERE node_id = ?", imageNode.ID).Scan(&imageID); err != nil {
		t.Fatalf("expected an Image row linked to the image node: %v", err)
	}

	img, ok, err := cat.Image(imageID)
	if err != nil || !ok {
		t.Fatalf("expected an Image row linked to the image node, ok=%v err=%v", ok, err)
	}
	if img.Description != "folder" {
		t.Errorf("got description %q, want 'folder'", img.Description)
	}
	if img.Width != 10 || img.Height != 10 {
		t.Errorf("got %dx%d, want 10x10", img.Width, img.Height)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	musicDir := t.TempDir()
	writePNG(t, filepath.Join(musicDir, "cover.png"), 4, 4)

	roots := []catalog.Root{{Name: "music", Path: musicDir}}
	_, cat := newTestCatalog(t, roots)

	if err := run(cat, make(chan struct{})); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := run(cat, make(chan struct{})); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rootNode, ok, err := cat.NodeByName(nil, "music")
	if err != nil || !ok {
		t.Fatalf("root node missing after second run")
	}

	children, err := cat.ChildrenOf(rootNode.ID)
	if err != nil {
		t.Fatalf("ChildrenOf: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("expected exactly one child node after two runs, got %d", len(children))
	}
}

func TestRunDeletesNodeWhenRootPathMissing(t *testing.T) {
	musicDir := t.TempDir()
	roots := []catalog.Root{{Name: "music", Path: musicDir}}
	_, cat := newTestCatalog(t, roots)

	if err := run(cat, make(chan struct{})); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, ok, _ := cat.NodeByName(nil, "music"); !ok {
		t.Fatal("expected root node to exist after first run")
	}

	if err := os.RemoveAll(musicDir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	if err := run(cat, make(chan struct{})); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if _, ok, _ := cat.NodeByName(nil, "music"); ok {
		t.Fatal("expected root node to be deleted once its path disappears")
	}
}

func TestWorkerStartIsIdempotentAndStopBlocks(t *testing.T) {
	musicDir := t.TempDir()
	roots := []catalog.Root{{Name: "music", Path: musicDir}}
	source, cat := newTestCatalog(t, roots)
	cat.Close()

	w := NewWorker(source)

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for w.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("worker did not finish scanning an empty root in time")
		default:
		}
	}

	w.Stop()
	if w.IsRunning() {
		t.Fatal("expected worker to be stopped")
	}
}
