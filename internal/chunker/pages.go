package chunker

import (
	"fmt"
	"os"
	"strings"
)

// LoadPages reads a pre-extracted document whose pages are separated by
// form-feed characters and returns the ordered page texts. A missing or
// entirely blank document is a startup error: a broken source silently
// serving empty context is worse than refusing to start.
func LoadPages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	pages := strings.Split(string(data), "\f")
	blank := true
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, fmt.Errorf("document %s contains no text", path)
	}
	return pages, nil
}
