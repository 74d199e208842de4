package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// UIMA JSON CAS serialization (the layout produced by INCEpTION exports and
// the cassis toolkit): a flat array of feature structures under
// "%FEATURE_STRUCTURES". The sofa carries the document text in "sofaString";
// every feature structure with integral "begin" and "end" features is treated
// as an annotation span. The "identifier" feature may be an inline string, an
// inline array, or an "@identifier" reference to a uima.cas.StringArray
// feature structure. Beyond these attribute probes nothing is validated.

const stringArrayType = "uima.cas.StringArray"

type jsonCAS struct {
	FeatureStructures []map[string]any `json:"%FEATURE_STRUCTURES"`
}

func loadJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var export jsonCAS
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("malformed JSON CAS: %w", err)
	}
	if export.FeatureStructures == nil {
		return nil, errors.New("malformed JSON CAS: no %FEATURE_STRUCTURES")
	}

	// String arrays may be referenced by id from annotation features.
	arrays := make(map[int64][]string)
	for _, fs := range export.FeatureStructures {
		if typeName(fs) != stringArrayType {
			continue
		}
		if id, ok := intFeature(fs, "%ID"); ok {
			arrays[id] = stringSlice(fs["%ELEMENTS"])
		}
	}

	doc := &Document{}
	sawSofa := false
	for _, fs := range export.FeatureStructures {
		if s, ok := fs["sofaString"].(string); ok {
			if !sawSofa {
				doc.Text = s
				sawSofa = true
			}
			continue
		}
		begin, okb := intFeature(fs, "begin")
		end, oke := intFeature(fs, "end")
		if !okb || !oke {
			continue
		}
		doc.Spans = append(doc.Spans, Span{
			Begin:       int(begin),
			End:         int(end),
			Identifiers: identifiers(fs, arrays),
		})
	}
	if !sawSofa {
		return nil, errors.New("malformed JSON CAS: no sofa")
	}
	return doc, nil
}

func typeName(fs map[string]any) string {
	s, _ := fs["%TYPE"].(string)
	return s
}

// intFeature returns the feature value only when it is an integral number.
// JSON numbers decode as float64.
func intFeature(fs map[string]any, name string) (int64, bool) {
	v, ok := fs[name].(float64)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// identifiers normalizes the identifier feature to a plain list so that later
// stages never probe for optional attributes.
func identifiers(fs map[string]any, arrays map[int64][]string) []string {
	switch v := fs["identifier"].(type) {
	case string:
		return []string{v}
	case []any:
		return stringSlice(v)
	}
	if ref, ok := intFeature(fs, "@identifier"); ok {
		return arrays[ref]
	}
	return nil
}
