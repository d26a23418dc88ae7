package dataurl

import (
	"errors"
	"testing"
)

func TestDecodeWithHeader(t *testing.T) {
	got, err := Decode("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestDecodeRejectsBarePayload(t *testing.T) {
	if _, err := Decode("aGVsbG8="); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("expected ErrNoHeader, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Decode("data:image/png;base64,@@@"); err == nil {
		t.Fatal("expected base64 error")
	}
}

func TestEncode(t *testing.T) {
	if got := Encode(MIMEPNG, []byte("hello")); got != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("unexpected data url %q", got)
	}
}

func TestMIME(t *testing.T) {
	if got := MIME("data:image/webp;base64,AAAA"); got != MIMEWebP {
		t.Fatalf("expected webp, got %q", got)
	}
	if got := MIME("AAAA"); got != "" {
		t.Fatalf("expected empty mime, got %q", got)
	}
}

func TestMIMEForName(t *testing.T) {
	cases := map[string]string{
		"a.png":  MIMEPNG,
		"a.PNG":  MIMEPNG,
		"a.webp": MIMEWebP,
		"a.gif":  MIMEGIF,
		"a.bmp":  MIMEBMP,
		"a.tif":  MIMETIFF,
		"a.tiff": MIMETIFF,
		"a.jpg":  MIMEJPEG,
		"a.heic": MIMEJPEG,
		"noext":  MIMEJPEG,
	}
	for name, want := range cases {
		if got := MIMEForName(name); got != want {
			t.Errorf("MIMEForName(%q) = %q, want %q", name, got, want)
		}
	}
}
