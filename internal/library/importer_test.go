package library

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mangatl/internal/dataurl"
	"mangatl/internal/testsupport"
)

func TestImportFolderFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	pngData := testsupport.PNG(t, 4, 4, nil)
	testsupport.WriteImage(t, dir, "b.PNG", pngData)
	testsupport.WriteImage(t, dir, "a.jpg", []byte("not really a jpeg"))
	testsupport.WriteImage(t, dir, "c.jpeg", []byte("jpeg"))
	testsupport.WriteImage(t, dir, "notes.txt", []byte("skip"))
	testsupport.WriteImage(t, dir, "scan.webp", []byte("skip"))
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	images, err := NewImporter(Options{ThumbnailSize: 0}).ImportFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportFolder: %v", err)
	}
	var names []string
	for _, img := range images {
		names = append(names, img.Name)
	}
	if strings.Join(names, ",") != "a.jpg,b.PNG,c.jpeg" {
		t.Fatalf("unexpected names %v", names)
	}
	if images[0].DataURL != dataurl.Encode("image/jpg", []byte("not really a jpeg")) {
		t.Fatalf("unexpected data url %q", images[0].DataURL)
	}
	if !strings.HasPrefix(images[1].DataURL, "data:image/png;base64,") {
		t.Fatalf("expected lowercased extension in mime, got %q", images[1].DataURL[:30])
	}
	if images[0].Thumbnail != images[0].DataURL {
		t.Fatal("expected thumbnail to equal data url when thumbnails are disabled")
	}
	if images[2].Path != filepath.Join(dir, "c.jpeg") {
		t.Fatalf("unexpected path %q", images[2].Path)
	}
}

func TestImportFolderThumbnails(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImage(t, dir, "big.png", testsupport.PNG(t, 64, 32, func(x, y int) color.Color {
		return color.Gray{Y: uint8(x * 4)}
	}))
	testsupport.WriteImage(t, dir, "broken.png", []byte("garbage"))

	images, err := NewImporter(Options{ThumbnailSize: 16, Workers: 2}).ImportFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("ImportFolder: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	big := images[0]
	if !strings.HasPrefix(big.Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg thumbnail, got %q", big.Thumbnail[:30])
	}
	raw, err := dataurl.Decode(big.Thumbnail)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode thumbnail config: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Fatalf("expected 16x8 thumbnail, got %dx%d", cfg.Width, cfg.Height)
	}
	if images[1].Thumbnail != images[1].DataURL {
		t.Fatal("expected undecodable image to fall back to its data url")
	}
}

func TestImportFolderMissing(t *testing.T) {
	if _, err := NewImporter(Options{}).ImportFolder(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing folder")
	}
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	z := testsupport.WriteImage(t, dir, "z.png", []byte("z"))
	a := testsupport.WriteImage(t, dir, "a.png", []byte("a"))
	txt := testsupport.WriteImage(t, dir, "x.txt", []byte("x"))

	images, err := NewImporter(Options{}).ImportFiles(context.Background(), []string{z, txt, a})
	if err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
	if len(images) != 2 || images[0].Name != "a.png" || images[1].Name != "z.png" {
		t.Fatalf("unexpected images %+v", images)
	}
}

func TestImportFilesMissingFile(t *testing.T) {
	_, err := NewImporter(Options{}).ImportFiles(context.Background(), []string{filepath.Join(t.TempDir(), "gone.png")})
	if err == nil {
		t.Fatal("expected read error")
	}
}

func TestIsSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.png": true, "a.JPG": true, "a.jpeg": true, "a.webp": false, "png": false,
	} {
		if got := IsSupported(name); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}
