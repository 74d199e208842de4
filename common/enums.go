// Package common holds small enums shared between configuration and
// conversion packages so neither has to import the other.
package common

//go:generate go tool go-enum --nocase

// Specification of requested output serialization.
// ENUM(turtle, ntriples)
type OutputFmt int

// Ext returns file extension used for the corpus in given serialization.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtTurtle:
		return ".ttl"
	case OutputFmtNtriples:
		return ".nt"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
