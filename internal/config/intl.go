package config

const (
	LangEnglish             = "en"
	LangBrazilianPortuguese = "pt-BR"
)

// Texts holds the user-facing labels of the renderer prefs in one language.
type Texts struct {
	Lang         string
	Titles       map[Field]string
	ThemeNames   map[Theme]string
	ResetTitle   string
	ReopenNotice string
}

var texts = map[string]Texts{
	LangEnglish: {
		Lang: LangEnglish,
		Titles: map[Field]string{
			FieldTheme:      "Preferred theme",
			FieldCentered:   "Center text",
			FieldFontSize:   "Font size",
			FieldMargin:     "Margin width",
			FieldPageHeight: "Page height",
			FieldPageWidth:  "Page width",
		},
		ThemeNames: map[Theme]string{
			ThemeBlack: "Black",
			ThemeDark:  "Dark",
			ThemeWhite: "White",
		},
		ResetTitle:   "Reset preferences to default",
		ReopenNotice: "Re-open the extension preferences",
	},
	LangBrazilianPortuguese: {
		Lang: LangBrazilianPortuguese,
		Titles: map[Field]string{
			FieldTheme:      "Tema preferido",
			FieldCentered:   "Centralizar texto",
			FieldFontSize:   "Tamanho da fonte",
			FieldMargin:     "Largura da margem",
			FieldPageHeight: "Altura das páginas",
			FieldPageWidth:  "Largura das páginas",
		},
		ThemeNames: map[Theme]string{
			ThemeBlack: "Preto",
			ThemeDark:  "Escuro",
			ThemeWhite: "Claro",
		},
		ResetTitle:   "Resetar preferências para o padrão",
		ReopenNotice: "Reabra as configurações da extensão.",
	},
}

// TextsFor falls back to English for languages without a translation.
func TextsFor(lang string) Texts {
	if t, ok := texts[lang]; ok {
		return t
	}

	return texts[LangEnglish]
}
