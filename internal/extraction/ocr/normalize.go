package ocr

import (
	"regexp"
	"strings"
)

var (
	reSpaces     = regexp.MustCompile(`[ \t\f\v]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`[|_]{3,}`)
)

// Normalize cleans raw OCR output: unix line endings, single spaces, at most one blank line
// between paragraphs, no runs of table-border noise.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
