package generic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/content"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any) {}

const novelPage = `<html><body>
<div class="eplister"><ul>
  <li><a href="/novel/chapter-3/">Chapter 3</a></li>
  <li><a href="/novel/chapter-2/">Chapter 2</a></li>
  <li><a href="/novel/chapter-1/" title="Chapter 1 - Start">1</a></li>
  <li><a href="/novel/chapter-2/">Chapter 2</a></li>
</ul></div>
</body></html>`

const chapterPage = `<html><head><title>Site</title></head><body>
<h1>Chapter 2 - The Gate</h1>
<div class="epcontent">
  <p>First   line.</p>
  <p> </p>
  <img src="/img/map.jpg">
  <p>Last line.</p>
</div>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/novel/":
			_, _ = io.WriteString(w, novelPage)
		case "/novel/chapter-2/":
			_, _ = io.WriteString(w, chapterPage)
		case "/empty/":
			_, _ = io.WriteString(w, "<html><body><p>nothing here</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChaptersSortedAndDeduplicated(t *testing.T) {
	srv := newServer(t)
	s := NewSource(srv.Client(), config.DefaultContentSelector, nopLog{})

	got, err := s.Chapters(context.Background(), srv.URL+"/novel/")
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 chapters, got %+v", got)
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].Label != want {
			t.Fatalf("chapter %d label %q, want %q", i, got[i].Label, want)
		}
	}
	if got[0].Title != "Chapter 1 - Start" || got[0].URL != srv.URL+"/novel/chapter-1/" {
		t.Fatalf("unexpected first chapter %+v", got[0])
	}
}

func TestChapterExtractsNodes(t *testing.T) {
	srv := newServer(t)
	s := NewSource(srv.Client(), config.DefaultContentSelector, nopLog{})

	ch, nodes, err := s.Chapter(context.Background(), srv.URL+"/novel/chapter-2/")
	if err != nil {
		t.Fatalf("chapter: %v", err)
	}
	if ch.Title != "Chapter 2 - The Gate" || ch.Label != "2" {
		t.Fatalf("unexpected chapter %+v", ch)
	}

	want := []content.Node{
		content.Text("First line."),
		content.Text(""),
		content.Image(srv.URL + "/img/map.jpg"),
		content.Text("Last line."),
	}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes: %+v", len(nodes), nodes)
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Fatalf("node %d: got %+v, want %+v", i, nodes[i], want[i])
		}
	}
}

func TestChapterWithoutContainer(t *testing.T) {
	srv := newServer(t)
	s := NewSource(srv.Client(), "div.epcontent", nopLog{})

	if _, _, err := s.Chapter(context.Background(), srv.URL+"/empty/"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestChapterReadabilityFallback(t *testing.T) {
	para := "The caravan crossed the salt flats before dawn, and nobody spoke until the towers of the old city rose out of the haze. "
	page := "<html><head><title>Chapter 9 - Salt</title></head><body>" +
		`<nav><a href="/">Home</a> <a href="/list">List</a></nav>` +
		`<div class="story-body">` +
		"<p>" + strings.Repeat(para, 3) + "</p>" +
		"<p>" + strings.Repeat(para, 3) + "</p>" +
		"<p>" + strings.Repeat(para, 3) + "</p>" +
		"</div><footer>Copyright</footer></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	s := NewSource(srv.Client(), "div.epcontent", nopLog{}, WithReadabilityFallback(true))
	ch, nodes, err := s.Chapter(context.Background(), srv.URL+"/novel/chapter-9/")
	if err != nil {
		t.Fatalf("chapter: %v", err)
	}
	if ch.Label != "9" {
		t.Fatalf("unexpected chapter %+v", ch)
	}

	found := false
	for _, n := range nodes {
		if !n.IsImage() && strings.Contains(n.Text, "salt flats") {
			found = true
		}
	}
	if !found {
		t.Fatalf("article text not extracted: %+v", nodes)
	}
}
