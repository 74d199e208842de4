// Package nif maps annotated documents onto NIF 2.0 RDF graphs and
// serializes them for knowledge base linking (D2KB) tooling.
package nif

import "github.com/knakk/rdf"

// Vocabularies appearing in the converter output.
const (
	NIFCore = "http://persistence.uni-leipzig.org/nlp2rdf/ontologies/nif-core#"
	ITSRDF  = "http://www.w3.org/2005/11/its/rdf#"
	RDFNS   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS  = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS   = "http://www.w3.org/2001/XMLSchema#"
)

var (
	rdfType = mustIRI(RDFNS + "type")

	nifRFC5147String    = mustIRI(NIFCore + "RFC5147String")
	nifString           = mustIRI(NIFCore + "String")
	nifContext          = mustIRI(NIFCore + "Context")
	nifBeginIndex       = mustIRI(NIFCore + "beginIndex")
	nifEndIndex         = mustIRI(NIFCore + "endIndex")
	nifIsString         = mustIRI(NIFCore + "isString")
	nifAnchorOf         = mustIRI(NIFCore + "anchorOf")
	nifReferenceContext = mustIRI(NIFCore + "referenceContext")

	itsTaIdentRef = mustIRI(ITSRDF + "taIdentRef")

	xsdNonNegativeInteger = mustIRI(XSDNS + "nonNegativeInteger")
)

func mustIRI(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		// this should never happen
		panic(err)
	}
	return iri
}
