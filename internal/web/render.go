package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/logger"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templatesFS embed.FS

// TemplateRenderer is the echo renderer for the HTML views.
type TemplateRenderer struct {
	templates *template.Template
	log       logger.Logger
}

func templateFunctions() template.FuncMap {
	return template.FuncMap{
		"title":    cases.Title(language.English).String,
		"lower":    strings.ToLower,
		"join":     strings.Join,
		"isSelect": func(f Field) bool { return f.Kind == fieldSelect },
		"isText":   func(f Field) bool { return f.Kind == fieldTextarea },
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer(log logger.Logger) (*TemplateRenderer, error) {
	tmpl, err := template.New("").Funcs(templateFunctions()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if log == nil {
		log = logger.NewDiscard()
	}
	return &TemplateRenderer{templates: tmpl, log: log}, nil
}

// Render executes into a buffer so a failing template writes nothing.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		t.log.Error("template execution failed",
			logger.String("template", name),
			logger.String("path", c.Request().URL.Path),
			logger.Error(err))
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
