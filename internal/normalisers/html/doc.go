// Package html provides a Normaliser implementation for HTML guides.
// It extracts readable text from HTML, dropping scripts and styles and
// decoding entities. Headings become markdown-style "#" lines so the
// chunker can label sections.
package html
