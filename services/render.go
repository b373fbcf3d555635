package services

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageRenderer renders the public portfolio page.
type PageRenderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewPageRenderer parses the embedded page template. imageURL maps a stored image path to
// the URL the browser should load. Projects without an image get a placeholder tile.
func NewPageRenderer(imageURL func(string) string) (*PageRenderer, error) {
	funcs := template.FuncMap{
		"imageURL": func(p *models.Project) string {
			if !p.HasImage() {
				return ""
			}
			return imageURL(*p.ImagePath)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"lower": strings.ToLower,
	}
	tmpl, err := template.New("public.html").Funcs(funcs).ParseFS(templateFS, "templates/public.html")
	if err != nil {
		return nil, err
	}
	return &PageRenderer{tmpl: tmpl, now: time.Now}, nil
}

type pageData struct {
	*Portfolio
	Year int
}

func (r *PageRenderer) Render(w io.Writer, p *Portfolio) error {
	return r.tmpl.Execute(w, pageData{Portfolio: p, Year: r.now().Year()})
}
