package web

import (
	"embed"
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/nijaru/yt-summary/validation"
)

//go:embed templates/index.html
var files embed.FS

const (
	Title = "Multi-Language Video Transcript Summarizer"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Language struct {
	Code string
	Name string
}

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
}

type pageData struct {
	Title      string
	Theme      string
	Languages  []Language
	Extensions []string
	MaxUpload  int64
}

type Page struct {
	tmpl      *template.Template
	maxUpload int64
}

func NewPage(maxUpload int64) (*Page, error) {
	tmpl, err := template.ParseFS(files, "templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse index template")
	}
	return &Page{tmpl: tmpl, maxUpload: maxUpload}, nil
}

// NormalizeTheme maps anything but "dark" to the light theme.
func NormalizeTheme(theme string) string {
	if theme == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (p *Page) Render(w io.Writer, theme string) error {
	languages := make([]Language, len(validation.Languages))
	for i, code := range validation.Languages {
		languages[i] = Language{Code: code, Name: languageNames[code]}
	}

	data := pageData{
		Title:      Title,
		Theme:      NormalizeTheme(theme),
		Languages:  languages,
		Extensions: validation.MediaExtensions,
		MaxUpload:  p.maxUpload,
	}
	return errors.Wrap(p.tmpl.Execute(w, data), "render index")
}
