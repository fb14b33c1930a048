package pages

import (
	"errors"
	"testing"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/content"
	"github.com/brogergvhs/noveltomanga/internal/render"
	"github.com/brogergvhs/noveltomanga/internal/synthetic"
)

// linePerPage renders every line as its own page.
type linePerPage struct {
	calls int
}

func (l *linePerPage) RenderPages(lines []string, _ config.RendererConfig) ([]string, error) {
	l.calls++
	return append([]string(nil), lines...), nil
}

type failing struct{ err error }

func (f failing) RenderPages([]string, config.RendererConfig) ([]string, error) {
	return nil, f.err
}

func TestFromNodesInterleavesTextAndImages(t *testing.T) {
	nodes := []content.Node{
		content.Text("Hello"),
		content.Text("world"),
		content.Image("https://example.com/x.png"),
		content.Text("Bye"),
	}

	got, err := FromNodes(nodes, &linePerPage{}, config.DefaultRendererConfig())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	want := []Page{
		{Index: 0, Origin: Synthetic, URL: synthetic.Encode("Hello")},
		{Index: 1, Origin: Synthetic, URL: synthetic.Encode("world")},
		{Index: 2, Origin: Native, URL: "https://example.com/x.png"},
		{Index: 3, Origin: Synthetic, URL: synthetic.Encode("Bye")},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pages, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFromNodesEmpty(t *testing.T) {
	eng := &linePerPage{}
	got, err := FromNodes(nil, eng, config.DefaultRendererConfig())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty, non-nil page list, got %#v", got)
	}
	if eng.calls != 0 {
		t.Fatalf("engine must not be called for empty content")
	}
}

func TestIndicesAreContiguous(t *testing.T) {
	nodes := []content.Node{
		content.Image("a.png"),
		content.Image("b.png"),
		content.Text("one"),
		content.Text("  "),
		content.Text("two"),
		content.Image("c.png"),
		content.Text(""),
	}

	got, err := FromNodes(nodes, &linePerPage{}, config.DefaultRendererConfig())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 pages, got %+v", got)
	}
	for i, p := range got {
		if p.Index != i {
			t.Fatalf("page %d has index %d", i, p.Index)
		}
	}
}

func TestAssemblePropagatesEngineErrors(t *testing.T) {
	nodes := []content.Node{content.Image("a.png"), content.Text("x")}

	got, err := FromNodes(nodes, failing{err: render.ErrInvalidLayout}, config.DefaultRendererConfig())
	if !errors.Is(err, render.ErrInvalidLayout) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}
	if got != nil {
		t.Fatalf("no partial list on error, got %+v", got)
	}
}

func TestSyntheticURLsDecodeToPageText(t *testing.T) {
	e, err := render.New()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	cfg := config.DefaultRendererConfig()
	cfg.PageHeight = 300
	cfg.PageWidth = 300

	nodes := []content.Node{
		content.Text("First paragraph with enough words to wrap more than once on a narrow page."),
		content.Text("Second paragraph."),
		content.Image("https://example.com/i.jpg"),
	}
	got, err := FromNodes(nodes, e, cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	for _, p := range got {
		text, ok := synthetic.DecodeString(p.URL)
		switch p.Origin {
		case Synthetic:
			if !ok || text == "" {
				t.Fatalf("synthetic page %d does not decode: %s", p.Index, p.URL)
			}
		case Native:
			if ok {
				t.Fatalf("native page %d decoded as synthetic", p.Index)
			}
		}
	}
	if last := got[len(got)-1]; last.Origin != Native {
		t.Fatalf("image must stay last, got %+v", last)
	}
	if urls := URLs(got); len(urls) != len(got) || urls[0] != got[0].URL {
		t.Fatalf("URLs mismatch")
	}
}
