package output

import (
	"path/filepath"
	"strings"
)

var replacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFilename replaces characters that are unsafe in a path segment.
func SanitizeFilename(name string) string {
	return replacer.Replace(name)
}

// LyricsPath returns outputDir/<album>/<title>.txt with both segments
// sanitized. An empty album writes straight into outputDir.
func LyricsPath(outputDir, album, title string) string {
	return filepath.Join(outputDir, dirSegment(album), SanitizeFilename(title+".txt"))
}

// dirSegment sanitizes a directory name so it cannot resolve to the output
// dir itself or its parent.
func dirSegment(name string) string {
	s := SanitizeFilename(name)
	if strings.Trim(s, ".") == "" && s != "" {
		return "_"
	}
	return s
}
