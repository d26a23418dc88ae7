package fonts

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/sync/errgroup"

	"mangatl/internal/textutil"
)

const scanWorkers = 8

// Scan walks the platform font directories and reads the family name from
// each TrueType file. Collections and CFF-flavoured OpenType files are
// skipped.
type Scan struct {
	// Paths overrides the discovered font files.
	Paths []string
}

// Families implements Lister.
func (s Scan) Families(ctx context.Context) ([]string, error) {
	paths := s.Paths
	if paths == nil {
		paths = findfont.List()
	}

	var (
		mu       sync.Mutex
		families []string
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(scanWorkers)
	for _, path := range paths {
		if textutil.Extension(path) != "ttf" {
			continue
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			family, ok := familyName(path)
			if !ok {
				return nil
			}
			mu.Lock()
			families = append(families, family)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return families, nil
}

func familyName(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(font.Name(truetype.NameIDFontFamily))
	return name, name != ""
}
