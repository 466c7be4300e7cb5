// Package chunker provides a layered-separator text chunking processor.
//
// Text is split on the highest priority separator present (headings, then
// blank lines, then line breaks, then sentence ends, then spaces, then
// single characters) and the pieces are merged back into chunks of at most
// the configured size, with trailing pieces repeated as overlap.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// separator is one split level. Leading separators stay at the start of
// the piece that follows them; others stay at the end of the piece before.
type separator struct {
	text    string
	leading bool
}

// separators in descending priority. The empty separator splits runes.
var separators = []separator{
	{text: "\n#", leading: true},
	{text: "\n\n"},
	{text: "\n"},
	{text: ". "},
	{text: " "},
	{text: ""},
}

var headingLine = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t]*$`)

// Processor splits guide content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// piece is a span of the source text with its byte offset.
type piece struct {
	text   string
	offset int
	runes  int
}

// Process splits the guide content into chunks.
// Input chunks are ignored; this processor creates new chunks from guide content.
func (p *Processor) Process(ctx context.Context, guide *domain.Guide, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(guide.Content) == "" {
		return nil, nil
	}

	atoms := p.split(guide.Content, 0, separators)
	headings := headingLine.FindAllStringSubmatchIndex(guide.Content, -1)

	var chunks []domain.Chunk
	emit := func(window []piece) {
		if len(window) == 0 {
			return
		}
		var b strings.Builder
		for _, pc := range window {
			b.WriteString(pc.text)
		}
		raw := b.String()
		content := strings.TrimSpace(raw)
		if content == "" {
			return
		}
		start := window[0].offset + strings.Index(raw, content)

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			GuideID:  guide.ID,
			Content:  content,
			Position: len(chunks),
			Section:  sectionAt(guide.Content, headings, start),
		})
	}

	var (
		window []piece
		length int
	)
	for _, atom := range atoms {
		if length+atom.runes > p.chunkSize && len(window) > 0 {
			emit(window)
			// Keep trailing pieces as overlap while they fit
			for len(window) > 0 && (length > p.overlap || length+atom.runes > p.chunkSize) {
				length -= window[0].runes
				window = window[1:]
			}
		}
		window = append(window, atom)
		length += atom.runes
	}
	emit(window)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// split breaks text into pieces no longer than the chunk size, trying
// separators in priority order.
func (p *Processor) split(text string, offset int, seps []separator) []piece {
	if utf8.RuneCountInString(text) <= p.chunkSize {
		return []piece{{text: text, offset: offset, runes: utf8.RuneCountInString(text)}}
	}

	sep, rest := seps[0], seps[1:]
	for sep.text != "" && !strings.Contains(text, sep.text) {
		sep, rest = rest[0], rest[1:]
	}

	if sep.text == "" {
		out := make([]piece, 0, utf8.RuneCountInString(text))
		for i, r := range text {
			out = append(out, piece{text: string(r), offset: offset + i, runes: 1})
		}
		return out
	}

	var out []piece
	for _, part := range splitKeep(text, sep) {
		out = append(out, p.split(part, offset, rest)...)
		offset += len(part)
	}
	return out
}

// splitKeep splits text on sep, keeping the separator so the parts
// concatenate back to the input.
func splitKeep(text string, sep separator) []string {
	var parts []string
	for {
		i := strings.Index(text, sep.text)
		if i < 0 {
			break
		}
		cut := i + len(sep.text)
		if sep.leading {
			cut = i
			if cut == 0 {
				// Separator at the very start belongs to the first part
				j := strings.Index(text[len(sep.text):], sep.text)
				if j < 0 {
					break
				}
				cut = j + len(sep.text)
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

// sectionAt returns the text of the last heading starting at or before pos.
func sectionAt(content string, headings [][]int, pos int) string {
	section := ""
	for _, h := range headings {
		if h[0] > pos {
			break
		}
		section = content[h[2]:h[3]]
	}
	return section
}
