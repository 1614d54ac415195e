package render

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Wrap greedily splits text into lines no wider than maxWidth. A word wider than
// maxWidth on its own is broken between runes.
func Wrap(face font.Face, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if font.MeasureString(face, candidate) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		for font.MeasureString(face, word) > maxWidth {
			head := fit(face, word, maxWidth)
			lines = append(lines, head)
			word = word[len(head):]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// fit returns the longest prefix of word that fits in maxWidth, at least one rune.
func fit(face font.Face, word string, maxWidth fixed.Int26_6) string {
	end := 0
	for end < len(word) {
		_, size := utf8.DecodeRuneInString(word[end:])
		if end > 0 && font.MeasureString(face, word[:end+size]) > maxWidth {
			break
		}
		end += size
	}
	return word[:end]
}
