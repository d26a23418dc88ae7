package archive

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"mangatl/internal/textutil"
)

// Entry names and prefixes inside the container.
const (
	ProjectFile  = "project.json"
	OriginalsDir = "originals/"
	MasksDir     = "masks/"
	FinalsDir    = "finals/"
)

// ErrInvalidName reports an image name that cannot be used as an archive key.
var ErrInvalidName = errors.New("invalid image name")

// ValidateName normalizes name to NFC and rejects values that would escape
// their folder prefix or are unusable as zip entry names.
func ValidateName(name string) (string, error) {
	normalized := textutil.NormalizeName(name)
	switch {
	case normalized == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsRune(normalized, 0):
		return "", fmt.Errorf("%w: %q contains NUL", ErrInvalidName, name)
	case strings.Contains(normalized, `\`):
		return "", fmt.Errorf("%w: %q contains a backslash", ErrInvalidName, name)
	case path.IsAbs(normalized) || hasDriveLetter(normalized):
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	case strings.HasSuffix(normalized, "/"):
		return "", fmt.Errorf("%w: %q names a folder", ErrInvalidName, name)
	case path.Clean(normalized) != normalized:
		return "", fmt.Errorf("%w: %q is not a clean path", ErrInvalidName, name)
	}
	for _, elem := range strings.Split(normalized, "/") {
		if elem == ".." {
			return "", fmt.Errorf("%w: %q escapes its folder", ErrInvalidName, name)
		}
	}
	return normalized, nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func originalKey(name string) string { return OriginalsDir + name }

func maskKey(name string) string { return MasksDir + textutil.PNGName(name) }

func finalKey(name string) string { return FinalsDir + textutil.PNGName(name) }
