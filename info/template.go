package info

import (
	_ "embed"
	"html/template"
)

//go:embed assets/docs.html
var docsHTML []byte

var defaultDocsTemplate = template.Must(template.New("docs").Parse(string(docsHTML)))

// DocsData is passed to the documentation template.
type DocsData struct {
	Title   string
	SpecURL string
}
