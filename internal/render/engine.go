// Package render paginates paragraphs into page texts and rasterizes a page
// text into an image.
//
// A page text is the rows of one page joined by "\n"; an empty row separates
// two paragraphs. Pages are plain strings so they can travel inside a URL and
// be drawn later with whatever config is current at that time.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/brogergvhs/noveltomanga/internal/config"
)

var ErrInvalidLayout = errors.New("page layout leaves no room for text")

const lineSpacing = 1.4

type Paginator interface {
	RenderPages(lines []string, cfg config.RendererConfig) ([]string, error)
}

type Rasterizer interface {
	Rasterize(page string, cfg config.RendererConfig) (image.Image, error)
}

type Engine interface {
	Paginator
	Rasterizer
}

// TextEngine draws with a single TrueType font. The parsed font is shared
// read-only; faces and drawing contexts are created per call, so one engine
// can serve concurrent requests.
type TextEngine struct {
	font *truetype.Font
}

type options struct {
	ttf []byte
}

type Option func(*options) error

func WithFontFile(path string) Option {
	return func(o *options) error {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read font %s: %w", path, err)
		}
		o.ttf = b
		return nil
	}
}

func WithFontBytes(ttf []byte) Option {
	return func(o *options) error {
		o.ttf = ttf
		return nil
	}
}

func New(opts ...Option) (*TextEngine, error) {
	o := options{ttf: goregular.TTF}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	ft, err := truetype.Parse(o.ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &TextEngine{font: ft}, nil
}

type layout struct {
	face       font.Face
	size       float64
	box        image.Rectangle
	lineHeight int
	ascent     int
}

func (l *layout) rowsPerPage() int {
	return l.box.Dy() / l.lineHeight
}

func (e *TextEngine) layoutFor(cfg config.RendererConfig) (*layout, error) {
	cfg = cfg.Normalized()
	size := float64(cfg.FontSize)

	w := cfg.PageWidth - 2*cfg.Margin
	h := cfg.PageHeight - 2*cfg.Margin
	lineHeight := int(math.Ceil(size * lineSpacing))

	if w < cfg.FontSize || h < lineHeight {
		return nil, fmt.Errorf("%w: %dx%d page, margin %d, font size %d",
			ErrInvalidLayout, cfg.PageWidth, cfg.PageHeight, cfg.Margin, cfg.FontSize)
	}
	box := image.Rect(cfg.Margin, cfg.Margin, cfg.Margin+w, cfg.Margin+h)

	face := truetype.NewFace(e.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})

	return &layout{
		face:       face,
		size:       size,
		box:        box,
		lineHeight: lineHeight,
		ascent:     face.Metrics().Ascent.Ceil(),
	}, nil
}

// RenderPages wraps each paragraph to the page width and fills pages row by
// row. A paragraph may continue on the next page.
func (e *TextEngine) RenderPages(lines []string, cfg config.RendererConfig) ([]string, error) {
	l, err := e.layoutFor(cfg)
	if err != nil {
		return nil, err
	}
	perPage := l.rowsPerPage()

	var pages []string
	var cur []string

	push := func() {
		for len(cur) > 0 && cur[len(cur)-1] == "" {
			cur = cur[:len(cur)-1]
		}
		if len(cur) > 0 {
			pages = append(pages, strings.Join(cur, "\n"))
		}
		cur = nil
	}

	for i, para := range lines {
		if i > 0 && len(cur) > 0 && len(cur) < perPage {
			cur = append(cur, "")
		}

		for _, row := range wrap(l.face, para, l.box.Dx()) {
			if len(cur) == perPage {
				push()
			}
			cur = append(cur, row)
		}
	}
	push()

	return pages, nil
}

// Rasterize draws one page text. Rows wider than the current content box are
// wrapped again; rows that do not fit vertically are dropped.
func (e *TextEngine) Rasterize(page string, cfg config.RendererConfig) (image.Image, error) {
	cfg = cfg.Normalized()

	l, err := e.layoutFor(cfg)
	if err != nil {
		return nil, err
	}
	th := ThemeFor(cfg.Theme)

	img := image.NewRGBA(image.Rect(0, 0, cfg.PageWidth, cfg.PageHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(th.BG), image.Point{}, draw.Src)

	dc := freetype.NewContext()
	dc.SetDPI(72)
	dc.SetFont(e.font)
	dc.SetFontSize(l.size)
	dc.SetHinting(font.HintingFull)
	dc.SetClip(img.Bounds())
	dc.SetDst(img)
	dc.SetSrc(image.NewUniform(th.FG))

	var rows []string
	for _, row := range strings.Split(page, "\n") {
		if row == "" || measure(l.face, row) <= l.box.Dx() {
			rows = append(rows, row)
			continue
		}
		rows = append(rows, wrap(l.face, row, l.box.Dx())...)
	}

	for i, row := range rows {
		top := l.box.Min.Y + i*l.lineHeight
		if top+l.lineHeight > l.box.Max.Y {
			break
		}
		if row == "" {
			continue
		}

		x := l.box.Min.X
		if cfg.Centered {
			x += (l.box.Dx() - measure(l.face, row)) / 2
		}

		if _, err := dc.DrawString(row, freetype.Pt(x, top+l.ascent)); err != nil {
			return nil, fmt.Errorf("draw row %d: %w", i, err)
		}
	}

	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
