// Package pages turns segmented chapter content into the ordered page list a
// reader fetches: rendered text pages interleaved with the chapter's own
// images.
package pages

import (
	"fmt"
	"iter"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/content"
	"github.com/brogergvhs/noveltomanga/internal/render"
	"github.com/brogergvhs/noveltomanga/internal/synthetic"
)

type Origin int

const (
	// Synthetic pages are rendered from text when fetched.
	Synthetic Origin = iota
	// Native pages point at an image from the source document.
	Native
)

func (o Origin) String() string {
	if o == Native {
		return "native"
	}
	return "synthetic"
}

type Page struct {
	Index  int
	Origin Origin
	URL    string
}

// Assemble numbers pages from 0 in document order. Each text run is
// paginated by engine and every page text becomes a synthetic URL; images
// pass through with their own URL.
func Assemble(events iter.Seq[content.Event], engine render.Paginator, cfg config.RendererConfig) ([]Page, error) {
	out := []Page{}

	for ev := range events {
		switch ev.Kind {
		case content.ImageEvent:
			out = append(out, Page{Index: len(out), Origin: Native, URL: ev.Node.URL})

		case content.RunEvent:
			texts, err := engine.RenderPages(ev.Lines, cfg)
			if err != nil {
				return nil, fmt.Errorf("render pages for run at page %d: %w", len(out), err)
			}
			for _, text := range texts {
				out = append(out, Page{Index: len(out), Origin: Synthetic, URL: synthetic.Encode(text)})
			}
		}
	}

	return out, nil
}

func FromNodes(nodes []content.Node, engine render.Paginator, cfg config.RendererConfig, opts ...content.SegmentOption) ([]Page, error) {
	return Assemble(content.Segment(nodes, opts...), engine, cfg)
}

func URLs(pages []Page) []string {
	urls := make([]string, len(pages))
	for i, p := range pages {
		urls[i] = p.URL
	}
	return urls
}
