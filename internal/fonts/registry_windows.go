//go:build windows

package fonts

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const fontsKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion\Fonts`

// Registry reads installed font names from the machine-wide font table.
type Registry struct{}

// Families implements Lister.
func (Registry) Families(context.Context) ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, fontsKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("open font registry key: %w", err)
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("read font registry values: %w", err)
	}
	families := make([]string, 0, len(names))
	for _, name := range names {
		families = append(families, registryFamily(name))
	}
	return families, nil
}
