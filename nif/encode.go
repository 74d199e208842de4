package nif

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/knakk/rdf"
)

// Fixed prefix table used for Turtle output, in declaration order.
var prefixes = []struct{ label, ns string }{
	{"nif", NIFCore},
	{"itsrdf", ITSRDF},
	{"rdf", RDFNS},
	{"rdfs", RDFSNS},
	{"xsd", XSDNS},
}

// WriteNTriples serializes the graph one triple per line.
func WriteNTriples(w io.Writer, g *Graph) error {
	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	if err := enc.EncodeAll(g.Triples()); err != nil {
		return err
	}
	return enc.Close()
}

// WriteTurtle serializes the graph grouped by subject, with the fixed prefix
// table up front and subjects in sorted order so output is reproducible. An
// empty graph produces an empty file.
func WriteTurtle(w io.Writer, g *Graph) error {
	if g.Len() == 0 {
		return nil
	}

	buf := bufio.NewWriter(w)
	for _, p := range prefixes {
		buf.WriteString("@prefix " + p.label + ": <" + p.ns + "> .\n")
	}

	type predGroup struct {
		pred    rdf.Predicate
		objects []rdf.Object
	}
	type subjGroup struct {
		subj  rdf.Subject
		order []string
		preds map[string]*predGroup
	}

	subjects := make(map[string]*subjGroup)
	var subjOrder []string
	for _, t := range g.Triples() {
		skey := t.Subj.String()
		sg := subjects[skey]
		if sg == nil {
			sg = &subjGroup{subj: t.Subj, preds: make(map[string]*predGroup)}
			subjects[skey] = sg
			subjOrder = append(subjOrder, skey)
		}
		pkey := t.Pred.String()
		pg := sg.preds[pkey]
		if pg == nil {
			pg = &predGroup{pred: t.Pred}
			sg.preds[pkey] = pg
			sg.order = append(sg.order, pkey)
		}
		pg.objects = append(pg.objects, t.Obj)
	}
	sort.Strings(subjOrder)

	for _, skey := range subjOrder {
		sg := subjects[skey]
		buf.WriteString("\n" + formatTerm(sg.subj))
		for i, pkey := range sg.order {
			if i > 0 {
				buf.WriteString(" ;")
			}
			pg := sg.preds[pkey]
			buf.WriteString("\n\t" + formatTerm(pg.pred) + " ")
			for j, obj := range pg.objects {
				if j > 0 {
					buf.WriteString(" , ")
				}
				buf.WriteString(formatTerm(obj))
			}
		}
		buf.WriteString(" .\n")
	}
	return buf.Flush()
}

func formatTerm(t rdf.Term) string {
	switch t.Type() {
	case rdf.TermIRI:
		return formatIRI(t.String())
	case rdf.TermLiteral:
		if l, ok := t.(rdf.Literal); ok {
			return formatLiteral(l)
		}
	}
	return t.Serialize(rdf.NTriples)
}

func formatIRI(iri string) string {
	if iri == RDFNS+"type" {
		return "a"
	}
	for _, p := range prefixes {
		if local, ok := strings.CutPrefix(iri, p.ns); ok && localNameSafe(local) {
			return p.label + ":" + local
		}
	}
	return "<" + iri + ">"
}

func formatLiteral(l rdf.Literal) string {
	val := `"` + escapeLiteral(l.String()) + `"`
	if lang := l.Lang(); lang != "" {
		return val + "@" + lang
	}
	if dt := l.DataType.String(); dt != "" && dt != XSDNS+"string" {
		return val + "^^" + formatIRI(dt)
	}
	return val
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// localNameSafe keeps prefix compaction conservative: anything outside a
// simple name falls back to a full IRI reference.
func localNameSafe(s string) bool {
	if s == "" || s[0] == '-' {
		return false
	}
	for _, r := range s {
		if r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
