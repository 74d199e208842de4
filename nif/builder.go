package nif

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/knakk/rdf"
	"go.uber.org/zap"

	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/cas"
)

// Builder derives NIF context and entity nodes from annotated documents.
type Builder struct {
	// Language tag attached to text literals, "en" when empty.
	Language string
}

func (b *Builder) lang() string {
	if b == nil || b.Language == "" {
		return "en"
	}
	return b.Language
}

// BuildDocumentGraph maps one document onto the shared graph. One context
// node covers the trimmed document text; every valid span carrying a Wikidata
// identifier becomes an entity node referencing it. All span level problems
// are logged and skipped, never failing the document, and a document with
// empty text contributes nothing at all.
func (b *Builder) BuildDocumentGraph(doc *cas.Document, documentURL string, g *Graph, log *zap.Logger) {
	trimmed := strings.TrimSpace(doc.Text)
	textLength := len([]rune(trimmed))
	if textLength == 0 {
		log.Warn("Document has empty text", zap.String("document", documentURL))
		return
	}

	contextNode, err := rdf.NewIRI(fmt.Sprintf("%s#char=0,%d", documentURL, textLength))
	if err != nil {
		log.Warn("Unable to build context URI", zap.String("document", documentURL), zap.Error(err))
		return
	}

	g.Add(rdf.Triple{Subj: contextNode, Pred: rdfType, Obj: nifRFC5147String})
	g.Add(rdf.Triple{Subj: contextNode, Pred: rdfType, Obj: nifString})
	g.Add(rdf.Triple{Subj: contextNode, Pred: rdfType, Obj: nifContext})
	g.Add(rdf.Triple{Subj: contextNode, Pred: nifBeginIndex, Obj: nonNegInt(0)})
	g.Add(rdf.Triple{Subj: contextNode, Pred: nifEndIndex, Obj: nonNegInt(textLength)})
	g.Add(rdf.Triple{Subj: contextNode, Pred: nifIsString, Obj: b.textLiteral(trimmed)})

	text := []rune(doc.Text)
	linked := false
	for _, span := range doc.Spans {
		if span.Begin < 0 || span.Begin >= span.End || span.End > len(text) {
			log.Warn("Invalid annotation positions",
				zap.String("document", documentURL), zap.Int("begin", span.Begin), zap.Int("end", span.End))
			continue
		}

		anchor := strings.TrimSpace(string(text[span.Begin:span.End]))
		if anchor == "" {
			log.Warn("Empty entity text",
				zap.String("document", documentURL), zap.Int("begin", span.Begin), zap.Int("end", span.End))
			continue
		}

		// Annotations without any identifier are simply not linkable, there
		// is nothing to report.
		ident, ok := wikidataIdentifier(span.Identifiers)
		if !ok {
			continue
		}

		entityNode, err := rdf.NewIRI(fmt.Sprintf("%s#char=%d,%d", documentURL, span.Begin, span.End))
		if err != nil {
			log.Warn("Unable to build entity URI", zap.String("document", documentURL), zap.Error(err))
			continue
		}

		g.Add(rdf.Triple{Subj: entityNode, Pred: rdfType, Obj: nifRFC5147String})
		g.Add(rdf.Triple{Subj: entityNode, Pred: rdfType, Obj: nifString})
		g.Add(rdf.Triple{Subj: entityNode, Pred: nifAnchorOf, Obj: b.textLiteral(anchor)})
		g.Add(rdf.Triple{Subj: entityNode, Pred: nifBeginIndex, Obj: nonNegInt(span.Begin)})
		g.Add(rdf.Triple{Subj: entityNode, Pred: nifEndIndex, Obj: nonNegInt(span.End)})
		g.Add(rdf.Triple{Subj: entityNode, Pred: nifReferenceContext, Obj: contextNode})

		// Entity triples above stay in the graph even when the identifier
		// does not parse. Only a successfully linked span counts.
		target, err := rdf.NewIRI(ident)
		if err != nil {
			log.Warn("Invalid identifier URI",
				zap.String("document", documentURL), zap.String("identifier", ident), zap.Error(err))
			continue
		}
		g.Add(rdf.Triple{Subj: entityNode, Pred: itsTaIdentRef, Obj: target})
		linked = true
	}

	if !linked {
		log.Info("No linkable annotations in document", zap.String("document", documentURL))
	}
}

// wikidataIdentifier selects the first candidate pointing into the Wikidata
// entity namespace. Annotations may carry candidates from several knowledge
// bases; Wikidata is the only vocabulary this converter links against.
func wikidataIdentifier(candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.Contains(c, "wikidata.org/entity") {
			return c, true
		}
	}
	return "", false
}

func (b *Builder) textLiteral(s string) rdf.Literal {
	l, err := rdf.NewLangLiteral(s, b.lang())
	if err != nil {
		// language tag is validated by configuration
		panic(err)
	}
	return l
}

func nonNegInt(v int) rdf.Literal {
	return rdf.NewTypedLiteral(strconv.Itoa(v), xsdNonNegativeInteger)
}
