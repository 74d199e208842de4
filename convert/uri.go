package convert

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/config"
)

// URIValues holds variables we make available for document URI template
// expansion.
type URIValues struct {
	Name string // file name without extension, percent-escaped for URI use
	File string // file name as is
	Ext  string // extension with leading dot
}

func parseURITemplate(field string) (*template.Template, error) {
	return template.New(string(config.DocumentURITemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
}

// expandDocumentURI derives the document URL for one input file. Offsets are
// attached to it later as RFC5147 fragments, so the expansion itself must not
// carry a fragment.
func expandDocumentURI(tmpl *template.Template, path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	values := URIValues{
		Name: url.PathEscape(strings.TrimSuffix(base, ext)),
		File: base,
		Ext:  ext,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand document URI template: %w", err)
	}
	return buf.String(), nil
}
