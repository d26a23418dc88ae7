package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mangatl/internal/testsupport"
)

func TestCreateLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "proj")
	m := NewManager(nil)
	if err := m.CreateLayout(root); err != nil {
		t.Fatalf("CreateLayout: %v", err)
	}
	for _, dir := range []string{"originals", "masks"} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
	if err := m.CreateLayout(root); err != nil {
		t.Fatalf("CreateLayout should be idempotent: %v", err)
	}
	if err := m.CreateLayout(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveMetadata(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil)
	target, err := m.SaveMetadata(dir, []byte(`{"v":1}`))
	if err != nil {
		t.Fatalf("SaveMetadata: %v", err)
	}
	if target != filepath.Join(dir, "project.json") {
		t.Fatalf("unexpected target %q", target)
	}
	if _, err := m.SaveMetadata(dir, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("SaveMetadata overwrite: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"v":2}` {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestSaveMetadataMissingDir(t *testing.T) {
	if _, err := NewManager(nil).SaveMetadata(filepath.Join(t.TempDir(), "missing"), []byte("{}")); err == nil {
		t.Fatal("expected error when output directory does not exist")
	}
}

func TestExportFlattened(t *testing.T) {
	dir := t.TempDir()
	page := testsupport.PNG(t, 2, 2, nil)
	images := []FlatImage{
		{Name: "page01.jpg", DataURL: testsupport.DataURL("image/png", page)},
		{Name: "cover", DataURL: testsupport.DataURL("image/png", []byte("x"))},
		{Name: "broken.jpg", DataURL: "data:image/png;base64,!!!"},
		{Name: "a:b.webp", DataURL: testsupport.DataURL("image/png", []byte("y"))},
	}

	summary, err := NewManager(nil).ExportFlattened(context.Background(), dir, images)
	if err != nil {
		t.Fatalf("ExportFlattened: %v", err)
	}
	if len(summary.Written) != 3 {
		t.Fatalf("expected 3 files written, got %v", summary.Written)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0] != "broken.jpg" {
		t.Fatalf("unexpected skipped %v", summary.Skipped)
	}

	got, err := os.ReadFile(filepath.Join(dir, "page01.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(page) {
		t.Fatal("page01.png does not match decoded payload")
	}
	for _, name := range []string{"cover.png", "a-b.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.png")); !os.IsNotExist(err) {
		t.Fatalf("broken.png should not exist, err=%v", err)
	}
}

func TestExportFlattenedEmptyDir(t *testing.T) {
	if _, err := NewManager(nil).ExportFlattened(context.Background(), "", nil); err == nil {
		t.Fatal("expected validation error")
	}
}
