//go:build !windows

package fonts

import (
	"context"
	"errors"
)

// Registry is only available on Windows.
type Registry struct{}

// Families implements Lister.
func (Registry) Families(context.Context) ([]string, error) {
	return nil, errors.New("font registry is only available on windows")
}
