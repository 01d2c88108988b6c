package parser

import (
	"strings"

	"github.com/aryannaik/nb-bookmarks/internal/termtext"
)

// ParseTagNames reads "nb --tags" output, one "#name" per line, and returns
// the names without "#" in the order listed. Repeats are dropped.
func ParseTagNames(text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, line := range termtext.Lines(text) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		name := strings.TrimSpace(line[1:])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
