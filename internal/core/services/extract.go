package services

import (
	"encoding/json"
	"regexp"
	"strings"
)

// agentAnswer is the JSON object the auditing agent is asked to produce.
type agentAnswer struct {
	Feedback     string `json:"feedback"`
	ProposedText string `json:"proposed_text"`
}

// extractor tries to pull an agentAnswer out of free text.
type extractor func(text string) (agentAnswer, bool)

// extractors run in order; the first success wins.
var extractors = []extractor{
	extractJSONFence,
	extractAnyFence,
	extractBraceObject,
}

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*\\n?(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\\n?(.*?)```")
)

// parsePreviewRunes bounds the raw text quoted in a parsing failure.
const parsePreviewRunes = 200

// ExtractAnswer parses the agent's final text into feedback and a proposed rewrite.
// When no strategy succeeds, feedback reports the failure with a preview of
// the text and the proposal is empty.
func ExtractAnswer(text string) (feedback, proposed string) {
	for _, extract := range extractors {
		if answer, ok := extract(text); ok {
			return answer.Feedback, answer.ProposedText
		}
	}
	return "parsing failed: " + preview(text, parsePreviewRunes), ""
}

func extractJSONFence(text string) (agentAnswer, bool) {
	return decodeFirst(jsonFence, text)
}

func extractAnyFence(text string) (agentAnswer, bool) {
	return decodeFirst(anyFence, text)
}

func decodeFirst(re *regexp.Regexp, text string) (agentAnswer, bool) {
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if answer, ok := decodeAnswer(m[1]); ok {
			return answer, true
		}
	}
	return agentAnswer{}, false
}

// extractBraceObject scans for balanced {...} spans, string-aware, and
// decodes the first one that is an answer object. A brace that never closes
// is skipped.
func extractBraceObject(text string) (agentAnswer, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end >= 0 {
			if answer, ok := decodeAnswer(text[start : end+1]); ok {
				return answer, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return agentAnswer{}, false
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// decodeAnswer accepts an object carrying at least one of the answer keys.
// Non-string values are rendered back to JSON text.
func decodeAnswer(raw string) (agentAnswer, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil {
		return agentAnswer{}, false
	}

	feedback, hasFeedback := obj["feedback"]
	proposed, hasProposed := obj["proposed_text"]
	if !hasFeedback && !hasProposed {
		return agentAnswer{}, false
	}

	return agentAnswer{
		Feedback:     stringValue(feedback),
		ProposedText: stringValue(proposed),
	}, true
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// Leaked window markers: "[CONTEXT-previous]", "[CONTEXT-next]" and
// "[CURRENT]" with its optional "(type)" label. Matching is case-sensitive.
var (
	windowMarker  = regexp.MustCompile(`\[(?:CONTEXT-(?:previous|next)|CURRENT)\](?:[ \t]*\((?:heading|paragraph|list item)\))?`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// SanitizeProposal removes context-window markers the model copied into its rewrite.
func SanitizeProposal(text string) string {
	text = windowMarker.ReplaceAllString(text, "")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func preview(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
