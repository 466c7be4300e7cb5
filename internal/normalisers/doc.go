// Package normalisers provides implementations of the Normaliser interface
// for the guide formats styleaudit reads. Each normaliser turns the bytes
// of one MIME type into guide text, keeping headings as "#" lines.
//
// Normalisers are registered with a Registry at startup; the registry
// picks the highest priority normaliser for each MIME type.
package normalisers
