package config

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// DiffSerialized returns a line diff between two serialized configuration
// payloads, or "" when they differ only in blank lines or trailing spaces.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(significantLines(previous), significantLines(current))
}

func significantLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
