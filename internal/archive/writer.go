package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"mangatl/internal/dataurl"
	"mangatl/internal/fileutil"
	"mangatl/internal/logging"
	"mangatl/internal/services"
)

const tempPathPrefix = "temp://"

// entrySet buffers container entries by key. Re-adding a key replaces its
// content but keeps its original position.
type entrySet struct {
	order []string
	data  map[string][]byte
}

func newEntrySet() *entrySet {
	return &entrySet{data: make(map[string][]byte)}
}

func (s *entrySet) put(key string, data []byte) {
	if _, ok := s.data[key]; !ok {
		s.order = append(s.order, key)
	}
	s.data[key] = data
}

func (s *entrySet) dir(key string) {
	s.put(key, nil)
}

// ExportSummary reports what Export wrote.
type ExportSummary struct {
	Path      string   `json:"path"`
	Originals int      `json:"originals"`
	Masks     int      `json:"masks"`
	Finals    int      `json:"finals"`
	Skipped   []string `json:"skipped,omitempty"`
}

// Export writes metadata and images to a container at dst. metadata must be a
// JSON document; it is stored re-indented with two spaces and its key order is
// preserved.
func (c *Codec) Export(ctx context.Context, dst string, metadata json.RawMessage, images []Image) (ExportSummary, error) {
	summary := ExportSummary{Path: dst}
	if strings.TrimSpace(dst) == "" {
		return summary, services.Wrap(services.ErrValidation, "archive", "export", "destination path is empty", nil)
	}

	var project bytes.Buffer
	if len(bytes.TrimSpace(metadata)) == 0 {
		metadata = json.RawMessage("null")
	}
	if err := json.Indent(&project, metadata, "", "  "); err != nil {
		return summary, services.Wrap(services.ErrValidation, "archive", "export", "project metadata is not valid JSON", err)
	}

	entries := newEntrySet()
	entries.put(ProjectFile, project.Bytes())
	entries.dir(OriginalsDir)
	entries.dir(MasksDir)
	for _, img := range images {
		if strings.TrimSpace(img.FinalDataURL) != "" {
			entries.dir(FinalsDir)
			break
		}
	}

	logger := logging.WithContext(ctx, c.logger)
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name, err := ValidateName(img.Name)
		if err != nil {
			logging.WarnWithContext(logger, "image skipped", "archive_name_rejected",
				logging.String("name", img.Name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "image is missing from the archive"),
				logging.String(logging.FieldErrorHint, "rename the image without path separators or '..'"),
			)
			summary.Skipped = append(summary.Skipped, img.Name)
			continue
		}

		if original, ok := c.resolveOriginal(img); ok {
			entries.put(originalKey(name), original)
		} else {
			logging.WarnWithContext(logger, "original skipped", "archive_original_skipped",
				logging.String("name", name),
				logging.String("path", img.Path),
				logging.String(logging.FieldImpact, "image original is missing from the archive"),
				logging.String(logging.FieldErrorHint, "check that the source file exists or re-import the image"),
			)
			summary.Skipped = append(summary.Skipped, name)
		}

		if mask, ok := c.resolveMask(logger, name, img.MaskDataURL); ok {
			entries.put(maskKey(name), mask)
		}
		if strings.TrimSpace(img.FinalDataURL) != "" {
			if final, err := dataurl.Decode(img.FinalDataURL); err == nil {
				entries.put(finalKey(name), final)
			}
		}
	}

	for _, key := range entries.order {
		switch {
		case key == ProjectFile || strings.HasSuffix(key, "/"):
		case strings.HasPrefix(key, OriginalsDir):
			summary.Originals++
		case strings.HasPrefix(key, MasksDir):
			summary.Masks++
		case strings.HasPrefix(key, FinalsDir):
			summary.Finals++
		}
	}

	if err := fileutil.WriteAtomic(dst, 0o644, func(w io.Writer) error {
		return c.writeContainer(w, entries)
	}); err != nil {
		return summary, services.Wrap(services.LocalIOMarker(err), "archive", "export", fmt.Sprintf("write %s", dst), err)
	}

	logger.Info("project exported",
		logging.String("path", dst),
		logging.Int("originals", summary.Originals),
		logging.Int("masks", summary.Masks),
		logging.Int("finals", summary.Finals),
	)

	if c.releaseDelay > 0 {
		timer := time.NewTimer(c.releaseDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return summary, nil
}

// resolveOriginal returns the source bytes for img. temp:// paths only have
// their inline payload; other paths are read from disk first.
func (c *Codec) resolveOriginal(img Image) ([]byte, bool) {
	if !strings.HasPrefix(img.Path, tempPathPrefix) && strings.TrimSpace(img.Path) != "" {
		if data, err := c.readFile(img.Path); err == nil {
			return data, true
		}
	}
	if strings.TrimSpace(img.DataURL) == "" {
		return nil, false
	}
	data, err := dataurl.Decode(img.DataURL)
	if err != nil {
		return nil, false
	}
	return data, true
}

// resolveMask returns the mask entry for name. Undecodable images are stored
// as supplied; undecodable base64 yields no entry.
func (c *Codec) resolveMask(logger *slog.Logger, name, value string) ([]byte, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	raw, err := dataurl.Decode(value)
	if err != nil {
		return nil, false
	}
	encoded, err := EncodeMask(raw)
	if err != nil {
		logger.Debug("mask stored without conversion", logging.String("name", name), logging.Error(err))
		return raw, true
	}
	return encoded, true
}

func (c *Codec) writeContainer(w io.Writer, entries *entrySet) error {
	zw := zip.NewWriter(w)
	level := c.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	modified := time.Now()
	for _, key := range entries.order {
		header := &zip.FileHeader{
			Name:     key,
			Method:   zip.Deflate,
			Modified: modified,
		}
		if strings.HasSuffix(key, "/") {
			header.Method = zip.Store
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create entry %s: %w", key, err)
		}
		if data := entries.data[key]; len(data) > 0 {
			if _, err := fw.Write(data); err != nil {
				return fmt.Errorf("write entry %s: %w", key, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}
