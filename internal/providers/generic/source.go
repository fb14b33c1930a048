package generic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/brogergvhs/noveltomanga/internal/chapters"
	"github.com/brogergvhs/noveltomanga/internal/content"
	"github.com/brogergvhs/noveltomanga/internal/util"
)

var ErrNoContent = errors.New("chapter content not found")

// Chapter lists on common novel themes, tried before scanning every link.
const chapterListSelector = "div.eplister li > a, ul.list-chapter li a, ul.chapter-list li a"

type Source struct {
	client      *http.Client
	selector    string
	log         interface{ Debugf(string, ...any) }
	readability bool
}

type Option func(*Source)

// WithReadabilityFallback extracts the main article of a chapter page when
// the container selector matches nothing.
func WithReadabilityFallback(on bool) Option {
	return func(s *Source) { s.readability = on }
}

func NewSource(c *http.Client, selector string, log interface{ Debugf(string, ...any) }, opts ...Option) *Source {
	s := &Source{client: c, selector: selector, log: log}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Source) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(s.client, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

// Chapters returns the chapters linked from a novel page, ordered by chapter
// number when every link carries one and by page order otherwise.
func (s *Source) Chapters(ctx context.Context, novelURL string) ([]chapters.Chapter, error) {
	doc, err := s.fetchDOM(ctx, novelURL)
	if err != nil {
		return nil, err
	}

	links := doc.Find(chapterListSelector)
	strict := links.Length() > 0
	if !strict {
		links = doc.Find("a[href]")
	}
	s.log.Debugf("chapter links: %d (list selector matched: %t)\n", links.Length(), strict)

	var out []chapters.Chapter
	seen := map[string]bool{}
	numbered := true

	links.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		title := linkTitle(a)
		num, label, found := chapters.ParseNumber(title)
		if !found {
			num, label, found = chapters.ParseNumber(href)
		}
		if !found && !strict {
			return
		}
		numbered = numbered && found

		u := resolveURL(novelURL, href)
		if seen[u] {
			return
		}
		seen[u] = true

		if title == "" {
			title = "Chapter " + label
		}
		out = append(out, chapters.Chapter{URL: u, Title: title, Num: num, Label: label})
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("no chapters found at %s", novelURL)
	}

	if numbered {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	}

	return out, nil
}

func linkTitle(a *goquery.Selection) string {
	if t, ok := a.Attr("title"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}

	return strings.Join(strings.Fields(a.Text()), " ")
}

// Chapter fetches one chapter and returns its paragraphs and images.
func (s *Source) Chapter(ctx context.Context, chapterURL string) (chapters.Chapter, []content.Node, error) {
	doc, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return chapters.Chapter{}, nil, err
	}

	ch := chapters.Chapter{URL: chapterURL, Title: pageTitle(doc)}

	var body string
	if sel := doc.Find(s.selector).First(); sel.Length() > 0 {
		body, err = goquery.OuterHtml(sel)
		if err != nil {
			return chapters.Chapter{}, nil, err
		}
	} else if s.readability {
		article, err := s.article(doc, chapterURL)
		if err != nil {
			return chapters.Chapter{}, nil, err
		}
		body = article.Content
		if ch.Title == "" {
			ch.Title = strings.TrimSpace(article.Title)
		}
		s.log.Debugf("%s: no match for %q, using readability\n", chapterURL, s.selector)
	} else {
		return chapters.Chapter{}, nil, fmt.Errorf("%w: no element matches %q at %s", ErrNoContent, s.selector, chapterURL)
	}

	if n, label, ok := chapters.ParseNumber(ch.Title); ok {
		ch.Num, ch.Label = n, label
	} else if n, label, ok := chapters.ParseNumber(chapterURL); ok {
		ch.Num, ch.Label = n, label
	}

	nodes, err := content.FromHTML(body, chapterURL)
	if err != nil {
		return chapters.Chapter{}, nil, err
	}
	s.log.Debugf("%s: %d nodes\n", chapterURL, len(nodes))

	return ch, nodes, nil
}

func (s *Source) article(doc *goquery.Document, chapterURL string) (readability.Article, error) {
	u, err := url.Parse(chapterURL)
	if err != nil {
		return readability.Article{}, err
	}

	raw, err := doc.Html()
	if err != nil {
		return readability.Article{}, err
	}

	article, err := readability.FromReader(strings.NewReader(raw), u)
	if err != nil {
		return readability.Article{}, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return readability.Article{}, fmt.Errorf("%w: no readable article at %s", ErrNoContent, chapterURL)
	}

	return article, nil
}

func pageTitle(doc *goquery.Document) string {
	for _, sel := range []string{"h1", "title"} {
		if t := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " "); t != "" {
			return t
		}
	}

	return ""
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
