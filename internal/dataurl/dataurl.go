// Package dataurl encodes and decodes the inline image payloads exchanged
// with the front end ("data:<mime>;base64,<payload>").
package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"

	"mangatl/internal/textutil"
)

var (
	// ErrEmpty is returned when a payload carries no data.
	ErrEmpty = errors.New("no image data")
	// ErrNoHeader is returned for a value without the "<header>," prefix.
	ErrNoHeader = errors.New("data url has no header")
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"
	MIMEGIF  = "image/gif"
	MIMEBMP  = "image/bmp"
	MIMETIFF = "image/tiff"
)

// Encode wraps payload as a base64 data URL of the given MIME type.
func Encode(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// Decode returns the bytes carried by a data URL. Everything up to the first
// comma is treated as the header; a value without a comma is rejected.
func Decode(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmpty
	}
	_, payload, ok := strings.Cut(value, ",")
	if !ok {
		return nil, ErrNoHeader
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// MIME reports the media type declared by a data URL header, or "" when the
// value has none.
func MIME(value string) string {
	header, _, ok := strings.Cut(strings.TrimSpace(value), ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return ""
	}
	mime, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	return mime
}

// MIMEForName maps a file name to the MIME type used when rebuilding inline
// payloads from archive entries. Unknown extensions map to JPEG.
func MIMEForName(name string) string {
	switch textutil.Extension(name) {
	case "png":
		return MIMEPNG
	case "webp":
		return MIMEWebP
	case "gif":
		return MIMEGIF
	case "bmp":
		return MIMEBMP
	case "tif", "tiff":
		return MIMETIFF
	default:
		return MIMEJPEG
	}
}
