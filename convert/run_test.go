package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/common"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/config"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/nif"
)

const casExport = `{
  "%FEATURE_STRUCTURES": [
    {"%ID": 1, "%TYPE": "uima.cas.Sofa", "sofaString": "Berlin is a city."},
    {"%ID": 2, "begin": 0, "end": 6, "identifier": "http://www.wikidata.org/entity/Q64"}
  ]
}`

func TestExpandDocumentURI(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		path string
		want string
	}{
		{"name only", "http://example.org/{{ .Name }}", "/data/doc1.json", "http://example.org/doc1"},
		{"escapes name", "http://example.org/{{ .Name }}", "/data/my doc.json", "http://example.org/my%20doc"},
		{"full file name", "http://example.org/{{ .File }}", "/data/doc1.json", "http://example.org/doc1.json"},
		{"extension", "http://example.org/{{ .Name }}{{ .Ext }}", "/data/doc1.xmi", "http://example.org/doc1.xmi"},
		{"sprig function", "http://example.org/{{ .Name | upper }}", "/data/doc1.json", "http://example.org/DOC1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := parseURITemplate(tt.tmpl)
			if err != nil {
				t.Fatalf("parseURITemplate() error = %v", err)
			}
			got, err := expandDocumentURI(tmpl, tt.path)
			if err != nil {
				t.Fatalf("expandDocumentURI() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandDocumentURI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseURITemplate_Malformed(t *testing.T) {
	if _, err := parseURITemplate("http://example.org/{{ .Name"); err == nil {
		t.Error("parseURITemplate() expected error for unclosed action")
	}
}

func TestExpandDocumentURI_MissingField(t *testing.T) {
	tmpl, err := parseURITemplate("http://example.org/{{ .Nope }}")
	if err != nil {
		t.Fatalf("parseURITemplate() error = %v", err)
	}
	if _, err := expandDocumentURI(tmpl, "/data/doc1.json"); err == nil {
		t.Error("expandDocumentURI() expected error for unknown template field")
	}
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"doc1.json":   casExport,
		"notes.txt":   "not an export",
		"broken.json": `{"%FEATURE_STRUCTURES": [`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write input file: %v", err)
		}
	}

	tmpl, err := parseURITemplate("http://example.org/{{ .Name }}")
	if err != nil {
		t.Fatalf("parseURITemplate() error = %v", err)
	}

	g := nif.NewGraph()
	b := &nif.Builder{}
	if err := processDir(context.Background(), dir, tmpl, b, g, zap.NewNop()); err != nil {
		t.Fatalf("processDir() error = %v", err)
	}

	// doc1 converted, notes skipped, broken logged and skipped
	if g.Len() != 13 {
		t.Errorf("Len() = %d, want 13", g.Len())
	}
}

func TestProcessDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "doc1.json"), []byte(casExport), 0644); err != nil {
		t.Fatalf("Failed to write input file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tmpl, _ := parseURITemplate("http://example.org/{{ .Name }}")
	err := processDir(ctx, dir, tmpl, &nif.Builder{}, nif.NewGraph(), zap.NewNop())
	if err != context.Canceled {
		t.Errorf("processDir() error = %v, want context.Canceled", err)
	}
}

func TestProcessDir_Unreadable(t *testing.T) {
	tmpl, _ := parseURITemplate("http://example.org/{{ .Name }}")
	err := processDir(context.Background(), filepath.Join(t.TempDir(), "absent"), tmpl, &nif.Builder{}, nif.NewGraph(), zap.NewNop())
	if err == nil {
		t.Error("processDir() expected error for absent directory")
	}
}

func TestProcessArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(f)
	for name, content := range map[string]string{
		"annotation/doc1.json": casExport,
		"annotation/notes.txt": "not an export",
		"annotation/bad.json":  `{"%FEATURE_STRUCTURES": [`,
	} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create entry %s: %v", name, err)
		}
		fw.Write([]byte(content))
	}
	w.Close()
	f.Close()

	tmpl, err := parseURITemplate("http://example.org/{{ .Name }}")
	if err != nil {
		t.Fatalf("parseURITemplate() error = %v", err)
	}

	g := nif.NewGraph()
	if err := processArchive(context.Background(), path, tmpl, &nif.Builder{}, g, zap.NewNop()); err != nil {
		t.Fatalf("processArchive() error = %v", err)
	}

	// doc1 converted, notes not recognized, bad entry logged and skipped
	if g.Len() != 13 {
		t.Errorf("Len() = %d, want 13", g.Len())
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name   string
		conf   config.ConversionConfig
		format common.OutputFmt
		want   string
	}{
		{"default turtle", config.ConversionConfig{}, common.OutputFmtTurtle, "corpus.ttl"},
		{"default ntriples", config.ConversionConfig{}, common.OutputFmtNtriples, "corpus.nt"},
		{"configured name", config.ConversionConfig{OutputName: "results.ttl"}, common.OutputFmtTurtle, "results.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputName(&tt.conf, tt.format); got != tt.want {
				t.Errorf("outputName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCorpus(t *testing.T) {
	doc := mustLoadGraph(t)
	out := filepath.Join(t.TempDir(), "sub", "corpus.ttl")

	if err := writeCorpus(doc, out, common.OutputFmtTurtle, false, zap.NewNop()); err != nil {
		t.Fatalf("writeCorpus() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read corpus: %v", err)
	}
	if !strings.Contains(string(data), "@prefix nif:") {
		t.Error("corpus file should be prefixed turtle")
	}
}

func TestWriteCorpus_OverwriteGuard(t *testing.T) {
	g := mustLoadGraph(t)
	out := filepath.Join(t.TempDir(), "corpus.ttl")
	if err := os.WriteFile(out, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to seed output file: %v", err)
	}

	if err := writeCorpus(g, out, common.OutputFmtTurtle, false, zap.NewNop()); err == nil {
		t.Error("writeCorpus() expected error when destination exists and overwrite is off")
	}

	if err := writeCorpus(g, out, common.OutputFmtTurtle, true, zap.NewNop()); err != nil {
		t.Fatalf("writeCorpus() error = %v with overwrite on", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read corpus: %v", err)
	}
	if string(data) == "old" {
		t.Error("existing file content should have been replaced")
	}
}

func mustLoadGraph(t *testing.T) *nif.Graph {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc1.json")
	if err := os.WriteFile(path, []byte(casExport), 0644); err != nil {
		t.Fatalf("Failed to write input file: %v", err)
	}
	tmpl, err := parseURITemplate("http://example.org/{{ .Name }}")
	if err != nil {
		t.Fatalf("parseURITemplate() error = %v", err)
	}
	g := nif.NewGraph()
	if err := processDocument(path, tmpl, &nif.Builder{}, g, zap.NewNop()); err != nil {
		t.Fatalf("processDocument() error = %v", err)
	}
	return g
}
