package IO

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// IsValidLine drops blank lines and wikitext section headings ("= Title =").
func IsValidLine(line string) bool {
	s := strings.TrimSpace(line)
	return s != "" && !strings.HasPrefix(s, "=")
}

// LoadSplit reads one corpus split, one example per line, keeping only
// valid lines.
func LoadSplit(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open split: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 16<<20) // wiki paragraphs can be long
	for sc.Scan() {
		if line := sc.Text(); IsValidLine(line) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read split %s: %w", path, err)
	}
	return lines, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
