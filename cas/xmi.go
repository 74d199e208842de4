package cas

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// XMI CAS serialization: a flat XML document where the sofa element carries
// the text in a sofaString attribute and any element with integral begin/end
// attributes is an annotation. Multi-valued features are encoded as a single
// whitespace separated attribute value.
func loadXMI(r io.Reader) (*Document, error) {
	xml := etree.NewDocument()
	xml.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := xml.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("malformed XMI CAS: %w", err)
	}

	root := xml.Root()
	if root == nil {
		return nil, errors.New("malformed XMI CAS: no root element")
	}

	doc := &Document{}
	sawSofa := false
	for _, el := range root.ChildElements() {
		if attr := el.SelectAttr("sofaString"); attr != nil {
			if !sawSofa {
				doc.Text = attr.Value
				sawSofa = true
			}
			continue
		}
		begin, okb := intAttr(el, "begin")
		end, oke := intAttr(el, "end")
		if !okb || !oke {
			continue
		}
		span := Span{Begin: begin, End: end}
		if attr := el.SelectAttr("identifier"); attr != nil {
			span.Identifiers = strings.Fields(attr.Value)
		}
		doc.Spans = append(doc.Spans, span)
	}
	if !sawSofa {
		return nil, errors.New("malformed XMI CAS: no sofa element")
	}
	return doc, nil
}

func intAttr(el *etree.Element, name string) (int, bool) {
	attr := el.SelectAttr(name)
	if attr == nil {
		return 0, false
	}
	v, err := strconv.Atoi(attr.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}
