package library

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"mangatl/internal/dataurl"
	"mangatl/internal/logging"
	"mangatl/internal/services"
	"mangatl/internal/textutil"
)

const (
	defaultWorkers       = 4
	thumbnailJPEGQuality = 80
)

// ImageInfo describes one imported page.
type ImageInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	DataURL   string `json:"data_url"`
	Thumbnail string `json:"thumbnail"`
}

// Options configures an Importer.
type Options struct {
	// ThumbnailSize is the longest thumbnail edge in pixels. Zero disables
	// thumbnail generation and reuses the full data URL.
	ThumbnailSize int
	Workers       int
	Logger        *slog.Logger
}

// Importer reads image files into ImageInfo records.
type Importer struct {
	thumbnailSize int
	workers       int
	logger        *slog.Logger
}

// NewImporter constructs an importer.
func NewImporter(opts Options) *Importer {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Importer{
		thumbnailSize: opts.ThumbnailSize,
		workers:       workers,
		logger:        logging.NewComponentLogger(opts.Logger, "library"),
	}
}

// IsSupported reports whether name has an importable extension (png, jpg,
// jpeg; case-insensitive).
func IsSupported(name string) bool {
	switch textutil.Extension(name) {
	case "png", "jpg", "jpeg":
		return true
	default:
		return false
	}
}

// ImportFolder loads every supported regular file directly inside dir,
// sorted by name. Subdirectories are not descended.
func (i *Importer) ImportFolder(ctx context.Context, dir string) ([]ImageInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "library", "import folder", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !IsSupported(entry.Name()) {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, full)
	}
	return i.load(ctx, paths)
}

// ImportFiles loads the supported files among paths, sorted by name.
func (i *Importer) ImportFiles(ctx context.Context, paths []string) ([]ImageInfo, error) {
	selected := make([]string, 0, len(paths))
	for _, p := range paths {
		if IsSupported(p) {
			selected = append(selected, p)
		}
	}
	return i.load(ctx, selected)
}

func (i *Importer) load(ctx context.Context, paths []string) ([]ImageInfo, error) {
	results := make([]ImageInfo, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(i.workers)

	for idx, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			info, err := i.loadOne(path)
			if err != nil {
				return err
			}
			results[idx] = info
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Name < results[b].Name })
	logging.WithContext(ctx, i.logger).Info("images imported", logging.Int("count", len(results)))
	return results, nil
}

func (i *Importer) loadOne(path string) (ImageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageInfo{}, services.Wrap(services.ErrValidation, "library", "read image", path, err)
	}
	name := filepath.Base(path)
	url := dataurl.Encode("image/"+textutil.Extension(name), data)
	info := ImageInfo{Name: name, Path: path, DataURL: url, Thumbnail: url}

	if i.thumbnailSize > 0 {
		thumb, err := Thumbnail(data, i.thumbnailSize)
		if err != nil {
			i.logger.Debug("thumbnail skipped", logging.String("path", path), logging.Error(err))
		} else {
			info.Thumbnail = thumb
		}
	}
	return info, nil
}

// Thumbnail decodes data, fits it within size×size preserving aspect ratio,
// and returns it as a JPEG data URL. Images already within bounds are only
// re-encoded.
func Thumbnail(data []byte, size int) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > size || bounds.Dy() > size {
		img = imaging.Fit(img, size, size, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return dataurl.Encode(dataurl.MIMEJPEG, buf.Bytes()), nil
}
