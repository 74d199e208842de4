// Package cas loads UIMA CAS annotation exports into a small in-memory
// document model. The model keeps exactly what NIF conversion needs: the sofa
// text and the annotation spans with their candidate knowledge base
// identifiers, resolved once at load time.
package cas

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Span is one annotation within a document. Offsets count Unicode code points
// into the sofa text, the way annotation tooling produces them.
type Span struct {
	Begin int
	End   int
	// Identifiers holds candidate knowledge base URIs attached to the
	// annotation, nil when the annotation carried none.
	Identifiers []string
}

// Document is the annotated document derived from one export file. It is
// read-only after loading.
type Document struct {
	Text  string
	Spans []Span
}

// LoadError reports failure to read or parse a single export file. The batch
// catches it per file and continues.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load CAS export %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

const (
	extJSON = ".json"
	extXMI  = ".xmi"
)

// Recognized reports whether Load will pick the file up based on its
// extension. Anything else is simply not part of the batch.
func Recognized(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extJSON, extXMI:
		return true
	}
	return false
}

// Load reads a single CAS export, dispatching on the file extension. The file
// handle is closed before Load returns regardless of outcome.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	return Decode(path, f)
}

// Decode parses a CAS export from r, dispatching on the extension of name.
// It serves both plain files and entries of a zipped export bundle.
func Decode(name string, r io.Reader) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case extJSON:
		doc, err = loadJSON(r)
	case extXMI:
		doc, err = loadXMI(r)
	default:
		err = fmt.Errorf("unrecognized extension %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return doc, nil
}
