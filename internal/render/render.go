// Package render turns student records into HTML documents.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/garyellow/docmock/internal/generator"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded document templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("docs").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Fragment renders the document element of one kind, without the page shell.
func (r *Renderer) Fragment(kind Kind, rec generator.StudentRecord) (template.HTML, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(kind), rec); err != nil {
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // already escaped
}

// Document renders a standalone HTML page containing one document.
func (r *Renderer) Document(kind Kind, rec generator.StudentRecord) ([]byte, error) {
	body, err := r.Fragment(kind, rec)
	if err != nil {
		return nil, err
	}
	return r.page(kind.Title(), body)
}

// PreviewOptions tunes the preview page.
type PreviewOptions struct {
	// Kinds selects the documents shown. Empty means AllKinds.
	Kinds []Kind
	// Interactive adds the download form used by the web UI.
	Interactive bool
}

type previewDoc struct {
	Kind Kind
	HTML template.HTML
}

type previewData struct {
	Record      generator.StudentRecord
	RecordJSON  string
	Documents   []previewDoc
	Interactive bool
}

// Preview renders every document with a caption above each one.
// Captions carry the doc-label class so rasterizers can skip them.
func (r *Renderer) Preview(rec generator.StudentRecord, opts PreviewOptions) ([]byte, error) {
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	data := previewData{Record: rec, Interactive: opts.Interactive}
	for _, k := range kinds {
		html, err := r.Fragment(k, rec)
		if err != nil {
			return nil, err
		}
		data.Documents = append(data.Documents, previewDoc{Kind: k, HTML: html})
	}
	if opts.Interactive {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		data.RecordJSON = string(raw)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "preview", data); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return r.page(rec.UniversityName+" Documents", template.HTML(buf.String())) //nolint:gosec // already escaped
}

func (r *Renderer) page(title string, body template.HTML) ([]byte, error) {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "page", struct {
		Title string
		Body  template.HTML
	}{title, body})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

type termView struct {
	Courses []generator.Course
	Stats   generator.TermStats
}

// Fixed weekly patterns; schedules only need to look plausible.
var (
	meetingDayPatterns  = []string{"MWF", "TTh", "MW", "TTh", "F"}
	meetingTimePatterns = []string{"09:00-09:50", "11:00-12:20", "13:00-14:20", "14:00-15:20", "10:00-12:50"}
)

var funcs = template.FuncMap{
	"termOf": func(courses []generator.Course, stats generator.TermStats) termView {
		return termView{Courses: courses, Stats: stats}
	},
	"imageSrc":    imageSrc,
	"meetingDays": func(i int) string { return meetingDayPatterns[i%len(meetingDayPatterns)] },
	"meetingTime": func(i int) string { return meetingTimePatterns[i%len(meetingTimePatterns)] },
}

// AssetPath is the URL path stored assets are served under.
const AssetPath = "/api/assets/"

// imageSrc admits the image references documents may carry: inline image
// data URLs, stored asset references and same-origin paths. Asset references
// are rewritten to their served path. Anything else renders as an empty source.
func imageSrc(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "asset:"):
		return template.URL(AssetPath + url.PathEscape(strings.TrimPrefix(s, "asset:"))) //nolint:gosec // escaped id
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return template.URL(s) //nolint:gosec // scheme checked above
	default:
		return ""
	}
}
