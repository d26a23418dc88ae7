package fonts

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FCList asks fontconfig for installed families.
type FCList struct {
	// Binary overrides the fc-list executable.
	Binary string
}

// Families implements Lister.
func (f FCList) Families(ctx context.Context) ([]string, error) {
	binary := f.Binary
	if binary == "" {
		binary = "fc-list"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, ":", "family")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return parseFCList(stdout.String()), nil
}

// parseFCList splits fc-list output. Each line lists one family with its
// localized aliases separated by commas; every alias is kept.
func parseFCList(output string) []string {
	var families []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		for alias := range strings.SplitSeq(scanner.Text(), ",") {
			alias = strings.TrimSpace(strings.ReplaceAll(alias, `\-`, "-"))
			if alias != "" {
				families = append(families, alias)
			}
		}
	}
	return families
}
