package chapters

import (
	"strconv"
	"strings"
)

// Filter picks chapters by label or 1-based position, by an inclusive
// "start-end" position range, or by a comma-separated position list. With no
// criteria every chapter is returned.
func Filter(all []Chapter, chapter, rng, list string) []Chapter {
	if chapter != "" {
		if byLabel := FilterByLabel(all, chapter); len(byLabel) > 0 {
			return byLabel
		}
		if idx, err := atoi(chapter); err == nil && idx > 0 && idx <= len(all) {
			return []Chapter{all[idx-1]}
		}

		return nil
	}

	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all
}

func FilterByLabel(all []Chapter, label string) []Chapter {
	var out []Chapter
	for _, c := range all {
		if c.Label == label {
			out = append(out, c)
		}
	}

	return out
}

func FilterRange(all []Chapter, rng string) []Chapter {
	start, end, ok := strings.Cut(rng, "-")
	if !ok {
		return nil
	}

	s, err1 := atoi(start)
	e, err2 := atoi(end)
	if err1 != nil || err2 != nil {
		return nil
	}
	if s <= 0 || s > e || e > len(all) {
		return nil
	}

	return all[s-1 : e]
}

func FilterList(all []Chapter, list string) []Chapter {
	var out []Chapter
	for p := range strings.SplitSeq(list, ",") {
		idx, err := atoi(p)
		if err != nil || idx <= 0 || idx > len(all) {
			continue
		}
		out = append(out, all[idx-1])
	}

	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
