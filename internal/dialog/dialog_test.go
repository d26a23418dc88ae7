package dialog

import (
	"context"
	"reflect"
	"testing"

	"mangatl/internal/testsupport"
)

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New("zenity").(Zenity); !ok {
		t.Fatal("expected zenity picker")
	}
	if _, ok := New(" ZENITY ").(Zenity); !ok {
		t.Fatal("expected mode match to ignore case and spaces")
	}
	if _, ok := New("").(Request); !ok {
		t.Fatal("expected request picker by default")
	}
}

func TestRequestPicker(t *testing.T) {
	ctx := context.Background()
	p := Request{}

	folder, err := p.PickFolder(ctx, Prompt{Path: " /tmp/pages "})
	if err != nil || folder != "/tmp/pages" {
		t.Fatalf("PickFolder = %q, %v", folder, err)
	}
	if cancelled, _ := p.PickSaveFile(ctx, Prompt{}); cancelled != "" {
		t.Fatalf("expected empty selection, got %q", cancelled)
	}
	files, _ := p.PickFiles(ctx, Prompt{Paths: []string{"a.png", " ", "b.png"}})
	if !reflect.DeepEqual(files, []string{"a.png", "b.png"}) {
		t.Fatalf("unexpected files %v", files)
	}
	single, _ := p.PickFiles(ctx, Prompt{Path: "c.png"})
	if !reflect.DeepEqual(single, []string{"c.png"}) {
		t.Fatalf("unexpected single selection %v", single)
	}
	if none, _ := p.PickFiles(ctx, Prompt{}); len(none) != 0 {
		t.Fatalf("expected no files, got %v", none)
	}
}

func TestZenitySelection(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("/home/u/a.png\n/home/u/b.png", 0, "zenity"))

	files, err := Zenity{}.PickFiles(context.Background(), Prompt{Title: "Import", Filters: []Filter{{Name: "Images", Patterns: []string{"*.png"}}}})
	if err != nil {
		t.Fatalf("PickFiles: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"/home/u/a.png", "/home/u/b.png"}) {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestZenityCancel(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("", 1, "zenity"))

	path, err := Zenity{}.PickSaveFile(context.Background(), Prompt{DefaultName: "project.mtproj"})
	if err != nil {
		t.Fatalf("cancel should not be an error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
}

func TestZenityFailure(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("", 5, "zenity"))

	if _, err := (Zenity{}).PickFolder(context.Background(), Prompt{}); err == nil {
		t.Fatal("expected error for unexpected exit status")
	}
}

func TestZenityPrefersSuppliedPath(t *testing.T) {
	got, err := Zenity{Binary: "/nonexistent/zenity"}.PickOpenFile(context.Background(), Prompt{Path: "/p.mtproj"})
	if err != nil || got != "/p.mtproj" {
		t.Fatalf("PickOpenFile = %q, %v", got, err)
	}
}

func TestFilterArg(t *testing.T) {
	if got := filterArg(Filter{Name: "Projects", Patterns: []string{"*.mtproj", "*.zip"}}); got != "Projects | *.mtproj *.zip" {
		t.Fatalf("unexpected filter %q", got)
	}
}
