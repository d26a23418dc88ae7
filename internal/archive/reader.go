package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zip"

	"mangatl/internal/dataurl"
	"mangatl/internal/logging"
	"mangatl/internal/services"
	"mangatl/internal/textutil"
)

// ErrMissingProject is returned when a container has no project.json entry.
var ErrMissingProject = errors.New("project.json not found in archive")

const importedPrefix = "imported/"

// Import opens the container at src and returns its metadata with inline
// payloads rebuilt for every image record that has a string name.
func (c *Codec) Import(ctx context.Context, src string) (any, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "archive", "import", fmt.Sprintf("open %s", src), err)
	}
	defer reader.Close()

	files := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		files[f.Name] = f
	}

	projectEntry, ok := files[ProjectFile]
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "archive", "import", src, ErrMissingProject)
	}
	raw, err := readEntry(projectEntry)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "import", "read project.json", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var project any
	if err := decoder.Decode(&project); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "import", "parse project.json", err)
	}

	root, ok := project.(map[string]any)
	if !ok {
		return project, nil
	}
	images, ok := root["images"].([]any)
	if !ok {
		return project, nil
	}

	logger := logging.WithContext(ctx, c.logger)
	restored := 0
	for _, item := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		image, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, ok := image["name"].(string)
		if !ok {
			continue
		}

		originalFound, err := restoreOriginal(image, files, name)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "archive", "import", "read original "+name, err)
		}
		if originalFound {
			restored++
		} else {
			logger.Debug("original missing from archive", logging.String("name", name))
		}

		mask, err := probe(files, MasksDir, name)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "archive", "import", "read mask "+name, err)
		}
		image["maskDataUrl"] = nullableDataURL(mask)

		final, err := probe(files, FinalsDir, name)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "archive", "import", "read final "+name, err)
		}
		image["finalDataUrl"] = nullableDataURL(final)
	}

	logger.Info("project imported",
		logging.String("path", src),
		logging.Int("images", len(images)),
		logging.Int("restored", restored),
	)
	return project, nil
}

func restoreOriginal(image map[string]any, files map[string]*zip.File, name string) (bool, error) {
	entry := lookup(files, OriginalsDir, name)
	if entry == nil {
		return false, nil
	}
	data, err := readEntry(entry)
	if err != nil {
		return false, err
	}
	url := dataurl.Encode(dataurl.MIMEForName(name), data)
	image["dataUrl"] = url
	image["thumbnail"] = url
	image["path"] = importedPrefix + name
	image["originalPath"] = importedPrefix + name
	return true, nil
}

// probe looks for <prefix><stem>.png, then <prefix><name>.
func probe(files map[string]*zip.File, prefix, name string) ([]byte, error) {
	for _, candidate := range []string{textutil.PNGName(name), name} {
		if entry := lookup(files, prefix, candidate); entry != nil {
			return readEntry(entry)
		}
	}
	return nil, nil
}

// lookup finds prefix+name, falling back to the NFC form of name used by
// Export.
func lookup(files map[string]*zip.File, prefix, name string) *zip.File {
	if f, ok := files[prefix+name]; ok && !strings.HasSuffix(f.Name, "/") {
		return f
	}
	if normalized := textutil.NormalizeName(name); normalized != name {
		if f, ok := files[prefix+normalized]; ok && !strings.HasSuffix(f.Name, "/") {
			return f
		}
	}
	return nil
}

func nullableDataURL(data []byte) any {
	if data == nil {
		return nil
	}
	return dataurl.Encode(dataurl.MIMEPNG, data)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
