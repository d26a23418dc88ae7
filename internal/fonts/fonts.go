package fonts

import (
	"context"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mangatl/internal/config"
	"mangatl/internal/logging"
)

// Lister returns the font family names known to one source.
type Lister interface {
	Families(ctx context.Context) ([]string, error)
}

// Static serves a fixed list.
type Static []string

// Families implements Lister.
func (s Static) Families(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}

// Chain queries sources in order and returns the first non-empty result,
// falling back to Fallback when every source fails or is empty.
type Chain struct {
	Sources  []Lister
	Fallback Static
	Logger   *slog.Logger
}

// Families implements Lister. The result is deduplicated and collated.
func (c Chain) Families(ctx context.Context) ([]string, error) {
	logger := logging.NewComponentLogger(c.Logger, "fonts")
	for _, source := range c.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		families, err := source.Families(ctx)
		if err != nil {
			logger.Debug("font source failed", logging.String("source", sourceName(source)), logging.Error(err))
			continue
		}
		if families = Collate(families); len(families) > 0 {
			return families, nil
		}
	}
	logger.Info("using fallback font list", logging.Int("count", len(c.Fallback)))
	return Collate(c.Fallback), nil
}

// Default builds the chain appropriate for the running platform.
func Default(cfg *config.Config, logger *slog.Logger) Chain {
	fallback := config.DefaultFallbackFonts
	if cfg != nil && len(cfg.Fonts.Fallback) > 0 {
		fallback = cfg.Fonts.Fallback
	}
	var sources []Lister
	switch runtime.GOOS {
	case "windows":
		sources = []Lister{Registry{}, Scan{}}
	case "darwin":
		sources = []Lister{Scan{}}
	default:
		sources = []Lister{FCList{}, Scan{}}
	}
	return Chain{Sources: sources, Fallback: Static(fallback), Logger: logger}
}

// Collate trims, deduplicates and sorts names using locale-independent
// Unicode collation, so "Écran" sorts next to "Ecran" rather than after "Z".
func Collate(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	collate.New(language.Und).SortStrings(out)
	return out
}

func sourceName(l Lister) string {
	switch l.(type) {
	case FCList:
		return "fc-list"
	case Registry:
		return "registry"
	case Scan:
		return "scan"
	case Static:
		return "static"
	default:
		return "custom"
	}
}
