package commands

import (
	"log/slog"
	"time"

	"mangatl/internal/archive"
	"mangatl/internal/config"
	"mangatl/internal/dialog"
	"mangatl/internal/fonts"
	"mangatl/internal/library"
	"mangatl/internal/project"
	"mangatl/internal/services/inference"
	"mangatl/internal/services/remote"
	"mangatl/internal/services/translate"
)

// Deps holds the collaborators the command set dispatches to. Nil fields are
// filled from configuration by New.
type Deps struct {
	Config    *config.Config
	Publisher translate.Publisher
	Logger    *slog.Logger

	Client   *remote.Client
	Picker   dialog.Picker
	Fonts    fonts.Lister
	Importer *library.Importer
	Projects *project.Manager
	Codec    *archive.Codec
}

// New builds a registry holding every command.
func New(deps Deps) *Registry {
	cfg := deps.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger := deps.Logger

	if deps.Client == nil {
		deps.Client = remote.NewClient(remote.Options{
			Timeout:   time.Duration(cfg.Services.RequestTimeoutSeconds) * time.Second,
			UserAgent: cfg.Services.UserAgent,
			Logger:    logger,
		})
	}
	if deps.Picker == nil {
		deps.Picker = dialog.New(cfg.Dialogs.Mode)
	}
	if deps.Fonts == nil {
		deps.Fonts = fonts.Default(cfg, logger)
	}
	if deps.Importer == nil {
		deps.Importer = library.NewImporter(library.Options{
			ThumbnailSize: cfg.Library.ThumbnailSize,
			Workers:       cfg.Library.ImportWorkers,
			Logger:        logger,
		})
	}
	if deps.Projects == nil {
		deps.Projects = project.NewManager(logger)
	}
	if deps.Codec == nil {
		deps.Codec = archive.NewCodec(ArchiveOptions(cfg, logger))
	}

	registry := NewRegistry(logger)
	registerInference(registry, inference.NewService(deps.Client, inference.DefaultsFromConfig(cfg)))
	registerTranslate(registry, translate.NewService(deps.Client, deps.Publisher, logger))
	registerFetch(registry, deps.Client)
	registerLocal(registry, localDeps{
		picker:    deps.Picker,
		importer:  deps.Importer,
		projects:  deps.Projects,
		codec:     deps.Codec,
		fonts:     deps.Fonts,
		extension: cfg.Archive.Extension,
	})
	return registry
}

// ArchiveOptions maps the archive config section to codec options.
func ArchiveOptions(cfg *config.Config, logger *slog.Logger) archive.Options {
	delay := time.Duration(cfg.Archive.ReleaseDelayMS) * time.Millisecond
	if cfg.Archive.ReleaseDelayMS <= 0 {
		delay = -1
	}
	return archive.Options{
		CompressionLevel: cfg.Archive.CompressionLevel,
		ReleaseDelay:     delay,
		Logger:           logger,
	}
}
