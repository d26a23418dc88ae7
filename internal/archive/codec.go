package archive

import (
	"log/slog"
	"os"
	"time"

	"mangatl/internal/logging"
)

const (
	defaultCompressionLevel = 6
	defaultReleaseDelay     = 200 * time.Millisecond
)

// Image is one image record supplied for export.
type Image struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	DataURL      string `json:"dataUrl,omitempty"`
	MaskDataURL  string `json:"maskDataUrl,omitempty"`
	FinalDataURL string `json:"finalDataUrl,omitempty"`
}

// Options configures a Codec.
type Options struct {
	// CompressionLevel is the deflate level, 1 (fastest) to 9 (smallest).
	CompressionLevel int
	// ReleaseDelay is slept after the container is closed. Negative disables it.
	ReleaseDelay time.Duration
	Logger       *slog.Logger
}

// Codec reads and writes project archives.
type Codec struct {
	level        int
	releaseDelay time.Duration
	logger       *slog.Logger
	readFile     func(string) ([]byte, error)
}

// NewCodec constructs a codec. Zero options select the defaults.
func NewCodec(opts Options) *Codec {
	level := opts.CompressionLevel
	if level < 1 || level > 9 {
		level = defaultCompressionLevel
	}
	delay := opts.ReleaseDelay
	switch {
	case delay == 0:
		delay = defaultReleaseDelay
	case delay < 0:
		delay = 0
	}
	return &Codec{
		level:        level,
		releaseDelay: delay,
		logger:       logging.NewComponentLogger(opts.Logger, "archive"),
		readFile:     os.ReadFile,
	}
}
