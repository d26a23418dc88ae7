package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"

	// Decoders for mask payloads.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/klauspost/compress/zlib"
)

const maskThreshold = 128

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// EncodeMask decodes an image payload and re-encodes it as a 1-bit grayscale
// PNG. Pixels whose luma is at least 128 become white.
func EncodeMask(payload []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decode mask image: %w", err)
	}
	bounds := img.Bounds()
	packed := packMask(img)
	return encodeBilevelPNG(bounds.Dx(), bounds.Dy(), packed)
}

// packMask thresholds img and packs it MSB-first, each row padded to a whole
// byte.
func packMask(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := (width + 7) / 8
	out := make([]byte, stride*height)
	gray, isGray := img.(*image.Gray)

	for y := range height {
		row := out[y*stride : (y+1)*stride]
		for x := range width {
			var luma uint8
			if isGray {
				luma = gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			} else {
				luma = lumaOf(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
			if luma >= maskThreshold {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}

// lumaOf converts to non-premultiplied RGB and applies Rec. 709 weights, so
// fully transparent pixels keep their underlying colour.
func lumaOf(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	y := (2126*uint32(n.R) + 7152*uint32(n.G) + 722*uint32(n.B) + 5000) / 10000
	if y > 255 {
		y = 255
	}
	return uint8(y)
}

// encodeBilevelPNG writes a PNG with colour type 0 and bit depth 1. The
// standard library encoder only emits 1-bit images as paletted.
func encodeBilevelPNG(width, height int, packed []byte) ([]byte, error) {
	stride := (width + 7) / 8
	if len(packed) != stride*height {
		return nil, fmt.Errorf("packed mask size %d does not match %dx%d", len(packed), width, height)
	}

	var raw bytes.Buffer
	zw, err := zlib.NewWriterLevel(&raw, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	for y := range height {
		if _, err := zw.Write([]byte{0}); err != nil {
			return nil, err
		}
		if _, err := zw.Write(packed[y*stride : (y+1)*stride]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 1  // bit depth
	ihdr[9] = 0  // grayscale
	ihdr[10] = 0 // deflate
	ihdr[11] = 0 // adaptive filtering
	ihdr[12] = 0 // no interlace
	writeChunk(&out, "IHDR", ihdr)
	writeChunk(&out, "IDAT", raw.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes(), nil
}

func writeChunk(w *bytes.Buffer, kind string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], kind)
	w.Write(header[:])
	w.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.Write(sum[:])
}
