package render

import (
	"strings"

	"golang.org/x/image/font"
)

func measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// wrap breaks text into rows no wider than maxWidth. Words wider than a row
// are split between runes. Whitespace-only text gives one blank row.
func wrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var rows []string
	var line string

	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if measure(face, candidate) <= maxWidth {
			line = candidate
			continue
		}

		if line != "" {
			rows = append(rows, line)
			line = ""
		}

		if measure(face, w) <= maxWidth {
			line = w
			continue
		}

		pieces := splitWord(face, w, maxWidth)
		rows = append(rows, pieces[:len(pieces)-1]...)
		line = pieces[len(pieces)-1]
	}
	if line != "" {
		rows = append(rows, line)
	}

	return rows
}

func splitWord(face font.Face, w string, maxWidth int) []string {
	var out []string
	var cur []rune

	for _, r := range w {
		next := append(cur, r)
		if len(cur) > 0 && measure(face, string(next)) > maxWidth {
			out = append(out, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}

	return out
}
