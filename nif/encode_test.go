package nif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/knakk/rdf"
	"go.uber.org/zap"

	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/cas"
)

func berlinGraph(t *testing.T) *Graph {
	t.Helper()
	doc := &cas.Document{
		Text: "Berlin is a city.",
		Spans: []cas.Span{
			{Begin: 0, End: 6, Identifiers: []string{"http://www.wikidata.org/entity/Q64"}},
		},
	}
	g := NewGraph()
	b := &Builder{}
	b.BuildDocumentGraph(doc, "http://example.org/doc1", g, zap.NewNop())
	return g
}

func TestWriteTurtle_EmptyGraph(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteTurtle(buf, NewGraph()); err != nil {
		t.Fatalf("WriteTurtle() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty graph should produce empty output, got %q", buf.String())
	}
}

func TestWriteTurtle(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteTurtle(buf, berlinGraph(t)); err != nil {
		t.Fatalf("WriteTurtle() error = %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "@prefix nif: <"+NIFCore+"> .\n") {
		t.Error("output should start with the fixed prefix block")
	}
	for _, want := range []string{
		"@prefix itsrdf: <" + ITSRDF + "> .",
		"@prefix xsd: <" + XSDNS + "> .",
		"@prefix rdfs: <" + RDFSNS + "> .",
		"<http://example.org/doc1#char=0,17>",
		"a nif:RFC5147String , nif:String , nif:Context",
		`nif:isString "Berlin is a city."@en`,
		`nif:beginIndex "0"^^xsd:nonNegativeInteger`,
		`nif:endIndex "17"^^xsd:nonNegativeInteger`,
		`nif:anchorOf "Berlin"@en`,
		"nif:referenceContext <http://example.org/doc1#char=0,17>",
		"itsrdf:taIdentRef <http://www.wikidata.org/entity/Q64>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("turtle output is missing %q", want)
		}
	}

	// subjects are sorted, entity URI sorts after context URI
	if strings.Index(out, "#char=0,17>") > strings.Index(out, "#char=0,6>") {
		t.Error("subjects should appear in sorted order")
	}
}

func TestWriteTurtle_Deterministic(t *testing.T) {
	g := berlinGraph(t)

	first := new(bytes.Buffer)
	second := new(bytes.Buffer)
	if err := WriteTurtle(first, g); err != nil {
		t.Fatalf("WriteTurtle() error = %v", err)
	}
	if err := WriteTurtle(second, g); err != nil {
		t.Fatalf("WriteTurtle() error = %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("two serializations of the same graph should be identical")
	}
}

func TestWriteTurtle_EscapesLiterals(t *testing.T) {
	g := NewGraph()
	lit, err := rdf.NewLangLiteral("say \"hi\"\nback\\slash", "en")
	if err != nil {
		t.Fatalf("NewLangLiteral() error = %v", err)
	}
	g.Add(rdf.Triple{Subj: mustIRI("http://example.org/s"), Pred: nifIsString, Obj: lit})

	buf := new(bytes.Buffer)
	if err := WriteTurtle(buf, g); err != nil {
		t.Fatalf("WriteTurtle() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"say \"hi\"\nback\\slash"@en`) {
		t.Errorf("literal not escaped properly: %s", buf.String())
	}
}

func TestWriteNTriples(t *testing.T) {
	g := berlinGraph(t)

	buf := new(bytes.Buffer)
	if err := WriteNTriples(buf, g); err != nil {
		t.Fatalf("WriteNTriples() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != g.Len() {
		t.Errorf("output lines = %d, want %d (one triple per line)", len(lines), g.Len())
	}
	for _, line := range lines {
		if !strings.HasSuffix(strings.TrimSpace(line), ".") {
			t.Errorf("malformed N-Triples line: %q", line)
		}
	}
}

func TestFormatLiteral(t *testing.T) {
	langLit, err := rdf.NewLangLiteral("Berlin", "en")
	if err != nil {
		t.Fatalf("NewLangLiteral() error = %v", err)
	}

	tests := []struct {
		name string
		lit  rdf.Literal
		want string
	}{
		{"language tagged", langLit, `"Berlin"@en`},
		{"typed", rdf.NewTypedLiteral("17", mustIRI(XSDNS+"nonNegativeInteger")), `"17"^^xsd:nonNegativeInteger`},
		{"plain string", rdf.NewTypedLiteral("plain", mustIRI(XSDNS+"string")), `"plain"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLiteral(tt.lit); got != tt.want {
				t.Errorf("formatLiteral() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatIRI(t *testing.T) {
	tests := []struct {
		name string
		iri  string
		want string
	}{
		{"rdf type shorthand", RDFNS + "type", "a"},
		{"nif prefix", NIFCore + "Context", "nif:Context"},
		{"itsrdf prefix", ITSRDF + "taIdentRef", "itsrdf:taIdentRef"},
		{"xsd prefix", XSDNS + "nonNegativeInteger", "xsd:nonNegativeInteger"},
		{"unknown namespace", "http://www.wikidata.org/entity/Q64", "<http://www.wikidata.org/entity/Q64>"},
		{"unsafe local part", NIFCore + "a/b", "<" + NIFCore + "a/b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatIRI(tt.iri); got != tt.want {
				t.Errorf("formatIRI(%q) = %q, want %q", tt.iri, got, tt.want)
			}
		})
	}
}
