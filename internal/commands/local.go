package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"mangatl/internal/archive"
	"mangatl/internal/dialog"
	"mangatl/internal/fonts"
	"mangatl/internal/library"
	"mangatl/internal/project"
	"mangatl/internal/services"
)

const projectFilterName = "Manga Translator Project"

type pathArgs struct {
	Path string `json:"path"`
}

type pathsArgs struct {
	Paths []string `json:"paths"`
	Path  string   `json:"path"`
}

type saveArgs struct {
	ProjectData json.RawMessage `json:"projectData"`
	OutputPath  string          `json:"outputPath"`
}

type exportProjectArgs struct {
	ProjectData json.RawMessage `json:"projectData"`
	ImageData   []archive.Image `json:"imageData"`
	Path        string          `json:"path"`
}

type flattenArgs struct {
	Images []project.FlatImage `json:"images"`
	Path   string              `json:"path"`
}

type localDeps struct {
	picker    dialog.Picker
	importer  *library.Importer
	projects  *project.Manager
	codec     *archive.Codec
	fonts     fonts.Lister
	extension string
}

func registerLocal(r *Registry, d localDeps) {
	imageFilter := dialog.Filter{Name: "Images", Patterns: []string{"*.png", "*.jpg", "*.jpeg"}}
	projectFilter := dialog.Filter{Name: projectFilterName, Patterns: []string{"*" + d.extension}}

	r.Register("read_file_b64", typed(func(_ context.Context, a pathArgs) (any, error) {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			marker := services.ErrValidation
			if errors.Is(err, fs.ErrNotExist) {
				marker = services.ErrNotFound
			}
			return nil, services.Wrap(marker, "commands", "read file", "", err)
		}
		return base64.StdEncoding.EncodeToString(data), nil
	}))

	r.Register("import_folder", typed(func(ctx context.Context, a pathArgs) (any, error) {
		dir, err := d.picker.PickFolder(ctx, dialog.Prompt{Title: "Select Folder", Path: a.Path})
		if err != nil {
			return nil, pickerError(err)
		}
		if dir == "" {
			return []library.ImageInfo{}, nil
		}
		return d.importer.ImportFolder(ctx, dir)
	}))

	r.Register("import_images", typed(func(ctx context.Context, a pathsArgs) (any, error) {
		paths, err := d.picker.PickFiles(ctx, dialog.Prompt{
			Title:   "Select Images",
			Path:    a.Path,
			Paths:   a.Paths,
			Filters: []dialog.Filter{imageFilter},
		})
		if err != nil {
			return nil, pickerError(err)
		}
		if len(paths) == 0 {
			return []library.ImageInfo{}, nil
		}
		return d.importer.ImportFiles(ctx, paths)
	}))

	r.Register("get_system_fonts", func(ctx context.Context, _ json.RawMessage) (any, error) {
		families, err := d.fonts.Families(ctx)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "commands", "Failed to get system fonts", "", err)
		}
		return fonts.Collate(families), nil
	})

	r.Register("create_directory_structure", typed(func(_ context.Context, a pathArgs) (any, error) {
		return nil, d.projects.CreateLayout(a.Path)
	}))

	save := typed(func(_ context.Context, a saveArgs) (any, error) {
		_, err := d.projects.SaveMetadata(a.OutputPath, metadataBytes(a.ProjectData))
		return nil, err
	})
	r.Register("save_project", save)
	r.Register("export_images", save)

	r.Register("export_project", typed(func(ctx context.Context, a exportProjectArgs) (any, error) {
		dst, err := d.picker.PickSaveFile(ctx, dialog.Prompt{
			Title:       "Export Project",
			Path:        a.Path,
			DefaultName: "project" + d.extension,
			Filters:     []dialog.Filter{projectFilter},
		})
		if err != nil {
			return nil, pickerError(err)
		}
		if dst == "" {
			return nil, nil
		}
		return d.codec.Export(ctx, dst, a.ProjectData, a.ImageData)
	}))

	r.Register("import_project", typed(func(ctx context.Context, a pathArgs) (any, error) {
		src, err := d.picker.PickOpenFile(ctx, dialog.Prompt{
			Title:   "Import Project",
			Path:    a.Path,
			Filters: []dialog.Filter{projectFilter},
		})
		if err != nil {
			return nil, pickerError(err)
		}
		if src == "" {
			return nil, nil
		}
		return d.codec.Import(ctx, src)
	}))

	r.Register("export_flattened_images", typed(func(ctx context.Context, a flattenArgs) (any, error) {
		dir, err := d.picker.PickFolder(ctx, dialog.Prompt{Title: "Export Images", Path: a.Path})
		if err != nil {
			return nil, pickerError(err)
		}
		if dir == "" {
			return nil, nil
		}
		return d.projects.ExportFlattened(ctx, dir, a.Images)
	}))
}

// metadataBytes returns the file contents for a project.json write. A JSON
// string argument is written as its text; any other JSON value is written as
// received.
func metadataBytes(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return []byte(text)
		}
	}
	return trimmed
}

func pickerError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return services.Wrap(services.ErrExternalTool, "commands", "picker", "", err)
}
