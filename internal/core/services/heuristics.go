package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

// Sentence-quality warning labels.
const (
	warnMissingPunctuation = "missing ending punctuation"
	warnTrailingWord       = "ends with a conjunction or preposition"
	warnParentheses        = "unbalanced parentheses"
	warnQuotes             = "unbalanced quotation marks"
	warnShortFragment      = "very short fragment without sentence punctuation"
	warnEllipsis           = "trailing ellipsis"
)

// danglingWords are conjunctions and prepositions a finished sentence rarely ends on.
var danglingWords = map[string]struct{}{
	"and": {}, "or": {}, "but": {}, "nor": {}, "so": {}, "yet": {}, "because": {},
	"although": {}, "if": {}, "while": {}, "that": {}, "which": {},
	"to": {}, "of": {}, "in": {}, "on": {}, "at": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "into": {}, "about": {}, "as": {}, "than": {},
	"the": {}, "a": {}, "an": {},
}

var (
	terminalPunctuation = regexp.MustCompile(`[.!?…:;]["'”’)\]]*$`)
	sentencePunctuation = regexp.MustCompile(`[.!?]`)
	trailingEllipsis    = regexp.MustCompile(`(\.\.\.|…)["'”’)\]]*$`)
	trailingWord        = regexp.MustCompile(`([\p{L}']+)\W*$`)
	orderedListMarker   = regexp.MustCompile(`^(?:\d+|[a-zA-Z])\)\s+`)
)

// SentenceWarnings runs the sentence-shape heuristics on a chunk's text and
// returns the labels that fired joined by "; ", or "" when none did.
// Headings skip the checks that expect sentence punctuation.
func SentenceWarnings(text string, contentType domain.ContentType) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var warnings []string
	heading := contentType == domain.ContentHeading
	hasTerminal := terminalPunctuation.MatchString(text)

	if !heading && !hasTerminal {
		warnings = append(warnings, warnMissingPunctuation)
	}

	if m := trailingWord.FindStringSubmatch(text); m != nil {
		if _, ok := danglingWords[strings.ToLower(m[1])]; ok {
			warnings = append(warnings, warnTrailingWord)
		}
	}

	// "1) Install" opens no parenthesis.
	unmarked := orderedListMarker.ReplaceAllString(text, "")
	if strings.Count(unmarked, "(") != strings.Count(unmarked, ")") {
		warnings = append(warnings, warnParentheses)
	}

	if !quotesBalanced(text) {
		warnings = append(warnings, warnQuotes)
	}

	if !heading && len(strings.Fields(text)) <= 3 && !sentencePunctuation.MatchString(text) {
		warnings = append(warnings, warnShortFragment)
	}

	if trailingEllipsis.MatchString(text) {
		warnings = append(warnings, warnEllipsis)
	}

	return strings.Join(warnings, "; ")
}

// quotesBalanced checks straight double quotes pair up and curly quotes match.
// Apostrophes are ignored.
func quotesBalanced(text string) bool {
	if strings.Count(text, `"`)%2 != 0 {
		return false
	}
	return strings.Count(text, "“") == strings.Count(text, "”")
}

// runeLen is the length of s in characters.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
