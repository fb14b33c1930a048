package render

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/brogergvhs/noveltomanga/internal/config"
)

func newEngine(t *testing.T) *TextEngine {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func smallConfig() config.RendererConfig {
	cfg := config.DefaultRendererConfig()
	cfg.PageWidth = 400
	cfg.PageHeight = 300
	cfg.FontSize = 20
	cfg.Margin = 20
	return cfg
}

func TestRenderPagesKeepsAllWordsInOrder(t *testing.T) {
	e := newEngine(t)
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, strings.Repeat("lorem ipsum dolor sit amet ", 4)+"end")
	}

	pages, err := e.RenderPages(paras, smallConfig())
	if err != nil {
		t.Fatalf("render pages: %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("expected text to span several pages, got %d", len(pages))
	}

	var got []string
	for _, p := range pages {
		if strings.HasPrefix(p, "\n") || strings.HasSuffix(p, "\n") {
			t.Fatalf("page starts or ends with a blank row: %q", p)
		}
		got = append(got, strings.Fields(p)...)
	}
	want := strings.Fields(strings.Join(paras, " "))
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("words lost or reordered across pages")
	}
}

func TestRenderPagesRespectsRowsPerPage(t *testing.T) {
	e := newEngine(t)
	cfg := smallConfig()
	l, err := e.layoutFor(cfg)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	var paras []string
	for i := 0; i < 40; i++ {
		paras = append(paras, "line")
	}
	pages, err := e.RenderPages(paras, cfg)
	if err != nil {
		t.Fatalf("render pages: %v", err)
	}
	for i, p := range pages {
		if n := len(strings.Split(p, "\n")); n > l.rowsPerPage() {
			t.Fatalf("page %d has %d rows, limit %d", i, n, l.rowsPerPage())
		}
	}
}

func TestRenderPagesEmptyInput(t *testing.T) {
	pages, err := newEngine(t).RenderPages(nil, smallConfig())
	if err != nil || len(pages) != 0 {
		t.Fatalf("expected no pages, got %v, %v", pages, err)
	}
}

func TestInvalidLayout(t *testing.T) {
	cfg := smallConfig()
	cfg.PageWidth = 240
	cfg.Margin = 200

	e := newEngine(t)
	if _, err := e.RenderPages([]string{"x"}, cfg); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
	if _, err := e.Rasterize("x", cfg); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	l, err := newEngine(t).layoutFor(smallConfig())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	rows := wrap(l.face, strings.Repeat("x", 200), 100)
	if len(rows) < 2 {
		t.Fatalf("expected long token to wrap, got %v", rows)
	}
	for _, r := range rows {
		if measure(l.face, r) > 100 {
			t.Fatalf("row %q wider than limit", r)
		}
	}
	if strings.Join(rows, "") != strings.Repeat("x", 200) {
		t.Fatalf("characters lost while splitting")
	}
}

func TestRasterizeUsesPageSizeAndTheme(t *testing.T) {
	cfg := smallConfig()
	cfg.Theme = config.ThemeWhite

	img, err := newEngine(t).Rasterize("Hello\n\nworld", cfg)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, cfg.PageWidth, cfg.PageHeight) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF {
		t.Fatalf("expected white background, got %v", img.At(0, 0))
	}

	inked := false
	for y := cfg.Margin; y < cfg.Margin+cfg.FontSize*2 && !inked; y++ {
		for x := cfg.Margin; x < cfg.PageWidth-cfg.Margin; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Fatalf("expected text pixels in the first row")
	}
}

func TestRasterizeIsDeterministic(t *testing.T) {
	e := newEngine(t)
	cfg := smallConfig()
	cfg.Centered = true

	var outs [][]byte
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := e.Rasterize("The same page, drawn twice.\nÀ bientôt", cfg)
			if err != nil {
				t.Errorf("rasterize: %v", err)
				return
			}
			b, err := EncodePNG(img)
			if err != nil {
				t.Errorf("encode: %v", err)
				return
			}
			mu.Lock()
			outs = append(outs, b)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(outs) != 4 {
		t.Fatalf("expected 4 renders, got %d", len(outs))
	}
	for i := 1; i < len(outs); i++ {
		if !bytes.Equal(outs[0], outs[i]) {
			t.Fatalf("render %d differs from render 0", i)
		}
	}
}

func TestThemeForUnknownFallsBack(t *testing.T) {
	if ThemeFor("SEPIA") != ThemeFor(config.DefaultTheme) {
		t.Fatalf("expected default theme for unknown name")
	}
}
