package commands

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"mangatl/internal/dialog"
	"mangatl/internal/fonts"
	"mangatl/internal/library"
	"mangatl/internal/project"
	"mangatl/internal/services"
	"mangatl/internal/services/translate"
	"mangatl/internal/testsupport"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []translate.StreamEvent
}

func (p *recordingPublisher) Publish(name string, payload any) {
	if name != translate.EventStream {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, payload.(translate.StreamEvent))
}

func newTestRegistry(t *testing.T, publisher translate.Publisher) *Registry {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return New(Deps{
		Config:    cfg,
		Publisher: publisher,
		Picker:    dialog.Request{},
		Fonts:     fonts.Static{"Wild Words", "Arial", "Arial"},
	})
}

func invoke(t *testing.T, r *Registry, name string, args any) (any, error) {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return r.Invoke(context.Background(), name, raw)
}

func TestNamesListsAllCommands(t *testing.T) {
	got := newTestRegistry(t, nil).Names()
	want := []string{
		"create_directory_structure", "detect_panels", "detect_text_areas",
		"export_flattened_images", "export_images", "export_project",
		"fetch_image", "fetch_models", "get_system_fonts", "import_folder",
		"import_images", "import_project", "inpaint_image", "inpaint_lama",
		"inpaint_manual_mask", "inpaint_text_auto", "read_file_b64",
		"recognize_images_batch", "save_project", "translate_deeplx",
		"translate_text", "translate_text_stream",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v\nwant %v", got, want)
	}
}

func TestInvokeUnknownCommand(t *testing.T) {
	_, err := newTestRegistry(t, nil).Invoke(context.Background(), "format_disk", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInvokeMalformedArguments(t *testing.T) {
	_, err := newTestRegistry(t, nil).Invoke(context.Background(), "detect_panels", json.RawMessage(`[1,2`))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDetectTextAreasForwardsImage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"boxes":[[1,2,3,4]]}`)
	}))
	defer server.Close()

	result, err := invoke(t, newTestRegistry(t, nil), "detect_text_areas", map[string]any{
		"apiUrl":    server.URL + "/",
		"imageData": "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if gotPath != "/detect_text_areas" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["image_data"] != "data:image/png;base64,AAAA" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	boxes := result.(map[string]any)["boxes"].([]any)
	if len(boxes) != 1 {
		t.Fatalf("unexpected result %v", result)
	}
}

func TestRemoteErrorKeepsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer server.Close()

	_, err := invoke(t, newTestRegistry(t, nil), "inpaint_image", map[string]any{
		"apiUrl": server.URL, "imageData": "a", "maskData": "b",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "API Error: Status 500 Internal Server Error, Body: boom" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	if services.HTTPStatus(err) != http.StatusBadGateway {
		t.Fatalf("unexpected status mapping %d", services.HTTPStatus(err))
	}
}

func TestTranslateStreamPublishesDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	pub := &recordingPublisher{}
	result, err := invoke(t, newTestRegistry(t, pub), "translate_text_stream", map[string]any{
		"apiUrl":   server.URL,
		"payload":  map[string]any{"stream": true, "messages": []any{}},
		"streamId": "s-1",
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	summary := result.(translate.StreamResult)
	if summary.StreamID != "s-1" || summary.Deltas != 2 || !summary.Done {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(pub.events) != 3 {
		t.Fatalf("expected 3 events, got %+v", pub.events)
	}
	if pub.events[0].Delta != "Hel" || pub.events[1].Delta != "lo" || !pub.events[2].Done {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestFetchImageEncodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	reg := newTestRegistry(t, nil)
	result, err := invoke(t, reg, "fetch_image", map[string]string{"url": server.URL + "/page.png"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("unexpected result %v", result)
	}
	_, err = invoke(t, reg, "fetch_image", map[string]string{"url": server.URL + "/missing.png"})
	if err == nil || err.Error() != "HTTP 404 Not Found" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestReadFileB64(t *testing.T) {
	path := testsupport.WriteImage(t, t.TempDir(), "page.png", []byte("hello"))
	reg := newTestRegistry(t, nil)

	result, err := invoke(t, reg, "read_file_b64", map[string]string{"path": path})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "aGVsbG8=" {
		t.Fatalf("unexpected result %v", result)
	}
	_, err = invoke(t, reg, "read_file_b64", map[string]string{"path": path + ".gone"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportFolderCancelledReturnsEmptyList(t *testing.T) {
	result, err := invoke(t, newTestRegistry(t, nil), "import_folder", map[string]any{})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	images, ok := result.([]library.ImageInfo)
	if !ok || images == nil || len(images) != 0 {
		t.Fatalf("expected empty list, got %#v", result)
	}
	encoded, _ := json.Marshal(result)
	if string(encoded) != "[]" {
		t.Fatalf("expected [] on the wire, got %s", encoded)
	}
}

func TestImportFolderWithPath(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteImage(t, dir, "02.png", testsupport.PNG(t, 2, 2, nil))
	testsupport.WriteImage(t, dir, "01.jpg", []byte("jpeg"))

	result, err := invoke(t, newTestRegistry(t, nil), "import_folder", map[string]string{"path": dir})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	images := result.([]library.ImageInfo)
	if len(images) != 2 || images[0].Name != "01.jpg" || images[1].Name != "02.png" {
		t.Fatalf("unexpected images %+v", images)
	}
}

func TestSaveProjectAcceptsStringOrObject(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry(t, nil)

	if _, err := invoke(t, reg, "save_project", map[string]any{"projectData": `{"a":1}`, "outputPath": dir}); err != nil {
		t.Fatalf("save_project: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "project.json"))
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected contents %q", data)
	}

	if _, err := invoke(t, reg, "export_images", map[string]any{"projectData": map[string]int{"b": 2}, "outputPath": dir}); err != nil {
		t.Fatalf("export_images: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "project.json"))
	if string(data) != `{"b":2}` {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestCreateDirectoryStructure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	if _, err := invoke(t, newTestRegistry(t, nil), "create_directory_structure", map[string]string{"path": root}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	for _, dir := range []string{"originals", "masks"} {
		if _, err := os.Stat(filepath.Join(root, dir)); err != nil {
			t.Fatalf("missing %s: %v", dir, err)
		}
	}
}

func TestExportAndImportProject(t *testing.T) {
	reg := newTestRegistry(t, nil)
	dst := filepath.Join(t.TempDir(), "book.mtproj")
	original := []byte("original-bytes")

	_, err := invoke(t, reg, "export_project", map[string]any{
		"path":        dst,
		"projectData": map[string]any{"images": []any{map[string]any{"name": "p1.jpg"}}},
		"imageData": []map[string]any{{
			"name":    "p1.jpg",
			"path":    "temp://p1.jpg",
			"dataUrl": testsupport.DataURL("image/jpeg", original),
		}},
	})
	if err != nil {
		t.Fatalf("export_project: %v", err)
	}

	result, err := invoke(t, reg, "import_project", map[string]string{"path": dst})
	if err != nil {
		t.Fatalf("import_project: %v", err)
	}
	images := result.(map[string]any)["images"].([]any)
	img := images[0].(map[string]any)
	if img["dataUrl"] != testsupport.DataURL("image/jpeg", original) {
		t.Fatalf("unexpected dataUrl %v", img["dataUrl"])
	}
	if img["maskDataUrl"] != nil {
		t.Fatalf("expected null mask, got %v", img["maskDataUrl"])
	}
}

func TestCancelledPickersWriteNothing(t *testing.T) {
	reg := newTestRegistry(t, nil)
	for _, name := range []string{"export_project", "import_project", "export_flattened_images"} {
		result, err := invoke(t, reg, name, map[string]any{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if result != nil {
			t.Fatalf("%s: expected nil result, got %#v", name, result)
		}
	}
}

func TestExportFlattenedImages(t *testing.T) {
	dir := t.TempDir()
	result, err := invoke(t, newTestRegistry(t, nil), "export_flattened_images", map[string]any{
		"path": dir,
		"images": []map[string]string{
			{"name": "p1.jpg", "dataUrl": testsupport.DataURL("image/png", []byte("png"))},
		},
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if summary := result.(project.FlattenSummary); len(summary.Written) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(dir, "p1.png")); err != nil {
		t.Fatalf("expected p1.png: %v", err)
	}
}

func TestGetSystemFonts(t *testing.T) {
	result, err := invoke(t, newTestRegistry(t, nil), "get_system_fonts", nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !reflect.DeepEqual(result, []string{"Arial", "Wild Words"}) {
		t.Fatalf("unexpected fonts %v", result)
	}
}

func TestMetadataBytes(t *testing.T) {
	if got := string(metadataBytes(json.RawMessage(` "{\"x\":1}" `))); got != `{"x":1}` {
		t.Fatalf("unexpected string unwrap %q", got)
	}
	if got := string(metadataBytes(json.RawMessage(`{"x":1}`))); !strings.HasPrefix(got, "{") {
		t.Fatalf("unexpected object bytes %q", got)
	}
}
