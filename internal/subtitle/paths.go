package subtitle

import (
	"path/filepath"
	"strings"
)

// OutputPaths derives the merged subtitle and transcript paths from the
// source media file's base name.
func OutputPaths(sourcePath, outputDir string) (srtPath, txtPath string) {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	srtPath = filepath.Join(outputDir, base+".srt")
	txtPath = filepath.Join(outputDir, base+".txt")
	return srtPath, txtPath
}

// TranslatedPath derives the translated subtitle path from the merged
// subtitle path.
func TranslatedPath(srtPath string) string {
	ext := filepath.Ext(srtPath)
	return strings.TrimSuffix(srtPath, ext) + "_multilingo" + ext
}
