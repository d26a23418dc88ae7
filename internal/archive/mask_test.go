package archive

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"mangatl/internal/testsupport"
)

func TestPackMaskRowPaddingAndBitOrder(t *testing.T) {
	// 10x2: row 0 has pixels 0 and 9 white, row 1 has pixel 7 white.
	img := image.NewGray(image.Rect(0, 0, 10, 2))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(9, 0, color.Gray{Y: 200})
	img.SetGray(7, 1, color.Gray{Y: 128})
	img.SetGray(8, 1, color.Gray{Y: 127})

	packed := packMask(img)
	if len(packed) != 4 {
		t.Fatalf("expected 4 bytes (2 per row), got %d", len(packed))
	}
	want := []byte{0x80, 0x40, 0x01, 0x00}
	if !bytes.Equal(packed, want) {
		t.Fatalf("packed = %08b, want %08b", packed, want)
	}
}

func TestPackMaskHonorsBoundsOffset(t *testing.T) {
	img := image.NewGray(image.Rect(5, 5, 7, 6))
	img.SetGray(6, 5, color.Gray{Y: 255})
	if packed := packMask(img); !bytes.Equal(packed, []byte{0x40}) {
		t.Fatalf("packed = %08b", packed)
	}
}

func TestEncodeMaskProducesBilevelPNG(t *testing.T) {
	src := testsupport.PNG(t, 10, 3, func(x, y int) color.Color {
		if x < 5 {
			return color.White
		}
		return color.Black
	})

	out, err := EncodeMask(src)
	if err != nil {
		t.Fatalf("EncodeMask: %v", err)
	}

	if !bytes.HasPrefix(out, pngSignature) {
		t.Fatal("missing png signature")
	}
	// IHDR data begins after signature (8) + length (4) + type (4).
	if out[24] != 1 || out[25] != 0 {
		t.Fatalf("expected bit depth 1 colour type 0, got %d/%d", out[24], out[25])
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode generated png: %v", err)
	}
	if decoded.Bounds().Dx() != 10 || decoded.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", decoded.Bounds())
	}
	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", decoded)
	}
	for y := range 3 {
		for x := range 10 {
			want := uint8(0)
			if x < 5 {
				want = 255
			}
			if got := gray.GrayAt(x, y).Y; got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestEncodeMaskRejectsGarbage(t *testing.T) {
	if _, err := EncodeMask([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLumaOfIgnoresAlpha(t *testing.T) {
	if got := lumaOf(color.NRGBA{R: 255, G: 255, B: 255, A: 0}); got != 255 {
		t.Fatalf("expected 255 for transparent white, got %d", got)
	}
	if got := lumaOf(color.NRGBA{A: 255}); got != 0 {
		t.Fatalf("expected 0 for black, got %d", got)
	}
}
