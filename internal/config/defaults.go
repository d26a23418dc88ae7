package config

const (
	defaultConfigPath          = "~/.config/mangatl/config.toml"
	defaultStateDir            = "~/.local/share/mangatl"
	defaultLogDir              = "~/.local/share/mangatl/logs"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultOCREngine           = "manga"
	defaultInpaintModel        = "lama_large_512px"
	defaultDilate              = 2
	defaultUserAgent           = "mangatl/dev"
	defaultArchiveExtension    = ".mtproj"
	defaultReleaseDelayMS      = 200
	defaultCompressionLevel    = 6
	defaultThumbnailSize       = 256
	defaultImportWorkers       = 4
	defaultDialogMode          = DialogModeRequest
	defaultEventBufferSize     = 1024
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 14
	maxCompressionLevel        = 9
	minCompressionLevel        = 1
	maxThumbnailSize           = 4096
	defaultAllowedOriginTauri  = "tauri://localhost"
	defaultAllowedOriginDev    = "http://localhost:1420"
	defaultAllowedOriginDevAlt = "http://127.0.0.1:1420"
)

// Picker backends accepted by dialogs.mode.
const (
	DialogModeRequest = "request"
	DialogModeZenity  = "zenity"
)

// DefaultFallbackFonts is served when no platform font source yields results.
var DefaultFallbackFonts = []string{
	"Anime Ace",
	"Arial",
	"Comic Sans MS",
	"Courier New",
	"Georgia",
	"Helvetica",
	"Noto Sans",
	"Noto Sans CJK JP",
	"Times New Roman",
	"Verdana",
	"Wild Words",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
			AllowedOrigins: []string{
				defaultAllowedOriginTauri,
				defaultAllowedOriginDev,
				defaultAllowedOriginDevAlt,
			},
		},
		Services: Services{
			DefaultOCREngine:    defaultOCREngine,
			DefaultInpaintModel: defaultInpaintModel,
			DefaultDilate:       defaultDilate,
			UserAgent:           defaultUserAgent,
		},
		Archive: Archive{
			Extension:        defaultArchiveExtension,
			ReleaseDelayMS:   defaultReleaseDelayMS,
			CompressionLevel: defaultCompressionLevel,
		},
		Library: Library{
			ThumbnailSize: defaultThumbnailSize,
			ImportWorkers: defaultImportWorkers,
		},
		Dialogs: Dialogs{
			Mode: defaultDialogMode,
		},
		Fonts: Fonts{
			Fallback: append([]string(nil), DefaultFallbackFonts...),
		},
		Events: Events{
			BufferSize: defaultEventBufferSize,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
