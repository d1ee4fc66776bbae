package rendering

import (
	"embed"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const templatePattern = "templates/*.tmpl"

var (
	templatesOnce sync.Once
	templates     *template.Template
	templatesErr  error

	policy = newPreviewPolicy()
)

// newPreviewPolicy allows the structural tags the preview templates emit, class and data
// attributes, and absolute links that open in a new tab without a referrer.
func newPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"article", "header", "section", "div",
		"h1", "h2", "h3", "p", "ul", "li",
		"span", "strong", "em",
	)
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		t, err := template.New("rendering").
			Funcs(template.FuncMap{"join": strings.Join}).
			ParseFS(templateFS, templatePattern)
		if err != nil {
			templatesErr = &TemplateError{Name: templatePattern, Message: "failed to parse templates", Cause: err}
			return
		}
		templates = t
	})
	return templates, templatesErr
}

// RenderHTML renders the preview as a sanitized HTML fragment rooted at <article>.
func RenderHTML(p *Preview) (string, error) {
	if p == nil {
		return "", &RenderError{Message: "preview is nil"}
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := tmpl.ExecuteTemplate(&out, "preview", p); err != nil {
		return "", &TemplateError{Name: "preview", Message: "failed to execute template", Cause: err}
	}
	return policy.Sanitize(out.String()), nil
}

type pageData struct {
	Title      string
	ThemeColor string
	Body       template.HTML
}

// RenderHTMLPage wraps the sanitized fragment in a standalone HTML document.
func RenderHTMLPage(p *Preview, title string) (string, error) {
	body, err := RenderHTML(p)
	if err != nil {
		return "", err
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(title) == "" {
		title = "Resume Preview"
	}

	var out strings.Builder
	data := pageData{
		Title:      title,
		ThemeColor: p.ThemeColor,
		// body has already been through the sanitizer
		Body: template.HTML(body), //nolint:gosec
	}
	if err := tmpl.ExecuteTemplate(&out, "page", data); err != nil {
		return "", &TemplateError{Name: "page", Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}
