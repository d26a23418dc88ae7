package fonts

import "strings"

// registryFamily strips the format suffix Windows appends to font value
// names, e.g. "Arial Bold (TrueType)" becomes "Arial Bold".
func registryFamily(valueName string) string {
	name := strings.TrimSpace(valueName)
	if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
