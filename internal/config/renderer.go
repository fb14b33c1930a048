package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownField = errors.New("unknown renderer field")
	ErrInvalidValue = errors.New("invalid renderer value")
)

type Theme string

const (
	ThemeBlack Theme = "BLACK"
	ThemeDark  Theme = "DARK"
	ThemeWhite Theme = "WHITE"
)

var Themes = []Theme{ThemeBlack, ThemeDark, ThemeWhite}

func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, true
		}
	}

	return "", false
}

// Persisted keys, one per RendererConfig field.
const (
	KeyTheme      = "theme_pref"
	KeyCentered   = "centered_pref"
	KeyFontSize   = "fontsize_pref"
	KeyMargin     = "margin_pref"
	KeyPageHeight = "pageheight_pref"
	KeyPageWidth  = "pagewidth_pref"
)

const (
	DefaultTheme      = ThemeDark
	DefaultCentered   = false
	DefaultFontSize   = 30
	DefaultMargin     = 30
	DefaultPageHeight = 1536
	DefaultPageWidth  = 1080

	FontSizeMin = 10
	FontSizeMax = 100
	MarginMin   = 20
	MarginMax   = 500
	PageSizeMin = 240
	PageSizeMax = 4096
)

// RendererConfig is an immutable snapshot of the rendering options. The Store
// hands out copies, so fields used together always come from the same update.
type RendererConfig struct {
	Theme      Theme `yaml:"theme"`
	Centered   bool  `yaml:"centered"`
	FontSize   int   `yaml:"font_size"`
	Margin     int   `yaml:"margin"`
	PageHeight int   `yaml:"page_height"`
	PageWidth  int   `yaml:"page_width"`
}

func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Theme:      DefaultTheme,
		Centered:   DefaultCentered,
		FontSize:   DefaultFontSize,
		Margin:     DefaultMargin,
		PageHeight: DefaultPageHeight,
		PageWidth:  DefaultPageWidth,
	}
}

// Normalized clamps numeric fields into their ranges and replaces an unknown
// theme with the default.
func (c RendererConfig) Normalized() RendererConfig {
	if _, ok := ParseTheme(string(c.Theme)); !ok {
		c.Theme = DefaultTheme
	}
	c.FontSize = clamp(c.FontSize, FontSizeMin, FontSizeMax)
	c.Margin = clamp(c.Margin, MarginMin, MarginMax)
	c.PageHeight = clamp(c.PageHeight, PageSizeMin, PageSizeMax)
	c.PageWidth = clamp(c.PageWidth, PageSizeMin, PageSizeMax)

	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// Field identifies one RendererConfig field for Store.Update.
type Field int

const (
	FieldTheme Field = iota
	FieldCentered
	FieldFontSize
	FieldMargin
	FieldPageHeight
	FieldPageWidth
)

var Fields = []Field{FieldTheme, FieldCentered, FieldFontSize, FieldMargin, FieldPageHeight, FieldPageWidth}

func (f Field) Key() string {
	switch f {
	case FieldTheme:
		return KeyTheme
	case FieldCentered:
		return KeyCentered
	case FieldFontSize:
		return KeyFontSize
	case FieldMargin:
		return KeyMargin
	case FieldPageHeight:
		return KeyPageHeight
	case FieldPageWidth:
		return KeyPageWidth
	default:
		return ""
	}
}

func (f Field) String() string {
	return strings.TrimSuffix(f.Key(), "_pref")
}

// ParseField accepts the persisted key ("fontsize_pref") or a short name
// ("fontsize", "font-size", "font_size").
func ParseField(name string) (Field, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "_pref")
	n = strings.NewReplacer("-", "", "_", "").Replace(n)

	switch n {
	case "theme":
		return FieldTheme, nil
	case "centered", "center":
		return FieldCentered, nil
	case "fontsize":
		return FieldFontSize, nil
	case "margin":
		return FieldMargin, nil
	case "pageheight", "height":
		return FieldPageHeight, nil
	case "pagewidth", "width":
		return FieldPageWidth, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// With returns a copy of c with field f set from its textual form. Numeric
// values are clamped, not rejected.
func (c RendererConfig) With(f Field, value string) (RendererConfig, error) {
	v := strings.TrimSpace(value)

	switch f {
	case FieldTheme:
		t, ok := ParseTheme(v)
		if !ok {
			return c, fmt.Errorf("%w: theme %q", ErrInvalidValue, value)
		}
		c.Theme = t
	case FieldCentered:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("%w: centered %q", ErrInvalidValue, value)
		}
		c.Centered = b
	case FieldFontSize, FieldMargin, FieldPageHeight, FieldPageWidth:
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%w: %s %q", ErrInvalidValue, f, value)
		}
		switch f {
		case FieldFontSize:
			c.FontSize = n
		case FieldMargin:
			c.Margin = n
		case FieldPageHeight:
			c.PageHeight = n
		case FieldPageWidth:
			c.PageWidth = n
		}
	default:
		return c, fmt.Errorf("%w: %d", ErrUnknownField, int(f))
	}

	return c.Normalized(), nil
}

// Value returns the persisted textual form of field f.
func (c RendererConfig) Value(f Field) string {
	switch f {
	case FieldTheme:
		return string(c.Theme)
	case FieldCentered:
		return strconv.FormatBool(c.Centered)
	case FieldFontSize:
		return strconv.Itoa(c.FontSize)
	case FieldMargin:
		return strconv.Itoa(c.Margin)
	case FieldPageHeight:
		return strconv.Itoa(c.PageHeight)
	case FieldPageWidth:
		return strconv.Itoa(c.PageWidth)
	default:
		return ""
	}
}

func (c RendererConfig) values() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		out[f.Key()] = c.Value(f)
	}

	return out
}
