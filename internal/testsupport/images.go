package testsupport

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// PNG encodes a w×h image filled by fill (nil paints it white).
func PNG(t testing.TB, w, h int, fill func(x, y int) color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.Color(color.White)
			if fill != nil {
				c = fill(x, y)
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// DataURL wraps payload in a base64 data URL with the given MIME type.
func DataURL(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// WriteImage writes payload to dir/name and returns the full path.
func WriteImage(t testing.TB, dir, name string, payload []byte) string {
	t.Helper()

	target := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", target, err)
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
	return target
}
