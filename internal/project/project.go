package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mangatl/internal/archive"
	"mangatl/internal/dataurl"
	"mangatl/internal/fileutil"
	"mangatl/internal/logging"
	"mangatl/internal/services"
	"mangatl/internal/textutil"
)

// FlatImage is one rendered page handed over for flattened export.
type FlatImage struct {
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
}

// FlattenSummary reports the outcome of ExportFlattened.
type FlattenSummary struct {
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
	Skipped []string `json:"skipped,omitempty"`
}

// Manager performs project directory operations.
type Manager struct {
	logger *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logging.NewComponentLogger(logger, "project")}
}

// CreateLayout creates the originals/ and masks/ directories under root,
// including any missing parents.
func (m *Manager) CreateLayout(root string) error {
	if strings.TrimSpace(root) == "" {
		return services.Wrap(services.ErrValidation, "project", "create layout", "path is empty", nil)
	}
	for _, dir := range []string{archive.OriginalsDir, archive.MasksDir} {
		target := filepath.Join(root, strings.TrimSuffix(dir, "/"))
		if err := os.MkdirAll(target, 0o755); err != nil {
			return services.Wrap(services.ErrValidation, "project", "create layout", target, err)
		}
	}
	return nil
}

// SaveMetadata writes data to <dir>/project.json, replacing any existing file.
func (m *Manager) SaveMetadata(dir string, data []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", services.Wrap(services.ErrValidation, "project", "save metadata", "output path is empty", nil)
	}
	target := filepath.Join(dir, archive.ProjectFile)
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrValidation, "project", "save metadata", target, err)
	}
	m.logger.Debug("project metadata saved", logging.String("path", target), logging.Int("bytes", len(data)))
	return target, nil
}

// ExportFlattened writes each image's inline payload to
// <dir>/<stem>.png. Payloads that do not decode are skipped; write failures
// abort the export.
func (m *Manager) ExportFlattened(ctx context.Context, dir string, images []FlatImage) (FlattenSummary, error) {
	summary := FlattenSummary{Dir: dir, Written: []string{}}
	if strings.TrimSpace(dir) == "" {
		return summary, services.Wrap(services.ErrValidation, "project", "export flattened", "output folder is empty", nil)
	}
	logger := logging.WithContext(ctx, m.logger)

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fileName := textutil.SanitizeFileName(textutil.PNGName(img.Name))
		payload, err := dataurl.Decode(img.DataURL)
		if err != nil || fileName == ".png" {
			if err == nil {
				err = fmt.Errorf("empty file name")
			}
			logging.WarnWithContext(logger, "flattened image skipped", "flatten_image_skipped",
				logging.String("name", img.Name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "page is missing from the export folder"),
				logging.String(logging.FieldErrorHint, "re-render the page and export again"),
			)
			summary.Skipped = append(summary.Skipped, img.Name)
			continue
		}
		target := filepath.Join(dir, fileName)
		if err := os.WriteFile(target, payload, 0o644); err != nil {
			return summary, services.Wrap(services.ErrValidation, "project", "export flattened", target, err)
		}
		summary.Written = append(summary.Written, target)
	}

	logger.Info("flattened images exported",
		logging.String("dir", dir),
		logging.Int("written", len(summary.Written)),
		logging.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}
