package html

import (
	"context"
	"html"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
	"github.com/custodia-labs/styleaudit/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML guides.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML guide to text with tags stripped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	rawContent := string(raw.Content)

	guide := domain.Guide{
		Title:    extractHTMLTitle(rawContent, raw.URI),
		Format:   "html",
		Content:  stripHTML(rawContent),
		Metadata: maps.Clone(raw.Metadata),
	}

	if guide.Metadata == nil {
		guide.Metadata = make(map[string]any)
	}
	guide.Metadata["mime_type"] = raw.MIMEType

	return &driven.NormaliseResult{
		Guide: guide,
	}, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	firstH1           = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag            = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingTag        = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	listItemTag       = regexp.MustCompile(`(?i)<li[^>]*>`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|li|tr|blockquote|pre|table|section|article|ul|ol)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|tr|blockquote|pre|table|section|article|ul|ol)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// extractHTMLTitle takes the <title>, then the first <h1>, then the filename.
func extractHTMLTitle(content, uri string) string {
	for _, re := range []*regexp.Regexp{titleTag, firstH1} {
		matches := re.FindStringSubmatch(content)
		if len(matches) > 1 {
			title := strings.TrimSpace(allTags.ReplaceAllString(matches[1], ""))
			title = html.UnescapeString(title)
			if title != "" {
				return title
			}
		}
	}

	filename := filepath.Base(uri)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// stripHTML removes HTML tags and returns readable text. Blocks are
// separated by blank lines and list items keep a "- " marker.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = navTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = headingTag.ReplaceAllStringFunc(content, func(m string) string {
		sub := headingTag.FindStringSubmatch(m)
		level := int(sub[1][0] - '0')
		text := strings.Join(strings.Fields(allTags.ReplaceAllString(sub[2], "")), " ")
		if text == "" {
			return "\n\n"
		}
		return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
	})

	content = listItemTag.ReplaceAllString(content, "\n- ")
	content = openBlockElements.ReplaceAllString(content, "\n\n")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Rebuild paragraphs: trim lines, keep single blank lines between blocks
	lines := strings.Split(content, "\n")
	var result []string
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == "-" {
			blank = true
			continue
		}
		if blank && len(result) > 0 && !(strings.HasPrefix(line, "- ") && strings.HasPrefix(result[len(result)-1], "- ")) {
			result = append(result, "")
		}
		blank = false
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
