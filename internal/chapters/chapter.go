// Package chapters names novel chapters on disk and picks the ones a user
// asked for.
package chapters

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/brogergvhs/noveltomanga/internal/util"
)

type Chapter struct {
	URL   string
	Title string
	// Num is the chapter number parsed from the link, 0 when unknown.
	Num   float64
	Label string
}

var (
	reUnderscore = regexp.MustCompile(`_+`)
	reNumber     = regexp.MustCompile(`(?i)(?:chapter|chap|ch|cap[ií]tulo|cap)[\s._\-]*0*(\d+(?:[.\-]\d+)?)`)
)

// ParseNumber finds a chapter number in a link text or URL. A dash between
// two numbers ("chapter-12-5") reads as a decimal point.
func ParseNumber(s string) (float64, string, bool) {
	m := reNumber.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}

	label := strings.ReplaceAll(m[1], "-", ".")
	n, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 0, "", false
	}

	return n, label, true
}

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := strings.NewReplacer(
		"•", "_", "-", "_", "—", "_", "–", "_",
		"/", "_", "\\", "_", ".", "_", " ", "_",
		"(", "", ")", "",
	)
	s = repl.Replace(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	return strings.Trim(reUnderscore.ReplaceAllString(string(clean), "_"), "_")
}

func (c Chapter) baseName() string {
	lbl := sanitize(c.Label)
	if lbl != "" {
		lbl = "ch_" + lbl
	}
	title := sanitize(c.Title)

	switch {
	case lbl == "" && title == "":
		return "chapter"
	case lbl == "":
		return title
	case title == "" || title == sanitize(c.Label):
		return lbl
	default:
		return lbl + "_" + title
	}
}

func (c Chapter) FolderName() string {
	return c.baseName() + util.TempSuffix
}

func (c Chapter) OutputCBZ() string {
	return c.baseName() + ".cbz"
}

func (c Chapter) OutputCBZPath(out string) string {
	return filepath.Join(out, c.OutputCBZ())
}

func (c Chapter) String() string {
	if c.Label == "" {
		return c.Title
	}

	return fmt.Sprintf("%s (ch. %s)", c.Title, c.Label)
}
