package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// chapterPolicy keeps text markup and images. Script, style and other
// non-text elements are dropped together with their content, so ad snippets
// injected into paragraphs never reach a page.
var chapterPolicy = newChapterPolicy()

func newChapterPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"article", "section", "div", "span", "p", "br", "blockquote",
		"em", "strong", "i", "b", "u", "s", "sub", "sup", "small",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowAttrs("src", "data-src", "data-lazy-src", "data-original", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)

	return p
}

// Sanitize strips chapter HTML down to what FromSelection reads.
func Sanitize(html string) string {
	return chapterPolicy.Sanitize(html)
}

// FromHTML sanitizes an HTML fragment and extracts its nodes.
func FromHTML(html, base string) ([]Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(Sanitize(html)))
	if err != nil {
		return nil, fmt.Errorf("parse chapter html: %w", err)
	}

	return FromSelection(doc.Selection, base), nil
}
