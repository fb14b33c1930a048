package content

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// NodeSelector matches the elements that become nodes.
const NodeSelector = "p, img"

// FromSelection walks paragraphs and images under sel in document order.
// Image sources are resolved against base.
func FromSelection(sel *goquery.Selection, base string) []Node {
	var out []Node

	sel.Find(NodeSelector).Each(func(_ int, el *goquery.Selection) {
		if goquery.NodeName(el) == "img" {
			src := imageSource(el)
			if src == "" {
				return
			}
			out = append(out, Image(resolve(base, src)))
			return
		}

		out = append(out, Text(paragraphText(el)))
	})

	return out
}

func imageSource(img *goquery.Selection) string {
	for _, k := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
		if v, ok := img.Attr(k); ok {
			v = strings.TrimSpace(v)
			if v != "" && !strings.HasPrefix(strings.ToLower(v), "data:") {
				return v
			}
		}
	}

	return ""
}

// paragraphText collapses whitespace runs the way a browser would display
// them and normalises to NFC.
func paragraphText(p *goquery.Selection) string {
	return norm.NFC.String(strings.Join(strings.Fields(p.Text()), " "))
}

func resolve(base, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u == nil {
		return raw
	}

	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(base)
	if err != nil || b == nil {
		return raw
	}

	return b.ResolveReference(u).String()
}
