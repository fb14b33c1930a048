package render

import (
	"image/color"

	"github.com/brogergvhs/noveltomanga/internal/config"
)

type Theme struct {
	BG color.Color
	FG color.Color
}

var themes = map[config.Theme]Theme{
	config.ThemeBlack: {
		BG: color.RGBA{0x00, 0x00, 0x00, 0xFF},
		FG: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	},
	config.ThemeDark: {
		BG: color.RGBA{0x29, 0x28, 0x32, 0xFF},
		FG: color.RGBA{0xE6, 0xE6, 0xE6, 0xFF},
	},
	config.ThemeWhite: {
		BG: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		FG: color.RGBA{0x00, 0x00, 0x00, 0xFF},
	},
}

func ThemeFor(t config.Theme) Theme {
	if th, ok := themes[t]; ok {
		return th
	}

	return themes[config.DefaultTheme]
}
