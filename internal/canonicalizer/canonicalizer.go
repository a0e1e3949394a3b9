// Package canonicalizer implements the text normalization rules shared by
// the pipeline, GENESIS, and VOICE: line-ending unification, whitespace
// collapsing, NFKC normalization, word tokenization, and sentence/paragraph
// splitting. Every string that participates in a hash is routed through
// Canonicalize first so that two byte-different but semantically identical
// inputs hash identically.
//
// Grounded on the general shape of a deterministic text-normalization
// helper, and on Mindburn-Labs-helm/core/pkg/kernel/csnf/csnf.go for
// using golang.org/x/text/unicode/norm rather than a hand-rolled
// normalizer.
package canonicalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonicalize applies the canonicalization rules in order: unify line
// endings to LF, apply NFKC to the whole text, collapse runs of
// non-newline whitespace per line and trim each line, allow at most one
// consecutive empty line, then trim the overall result. NFKC runs before
// the whitespace collapse: some compatibility whitespace (U+00A0, U+2003,
// U+3000, ...) folds to U+0020 under NFKC, and collapsing first would
// leave those runs uncollapsed until a second pass folded and re-collapsed
// them, breaking canonicalize(canonicalize(x)) == canonicalize(x).
func Canonicalize(text string) string {
	unified := nfkc(unifyLineEndings(text))
	lines := strings.Split(unified, "\n")

	collapsed := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		trimmedLine := collapseWhitespace(line)
		if trimmedLine == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		collapsed = append(collapsed, trimmedLine)
	}

	joined := strings.Join(collapsed, "\n")
	return strings.Trim(joined, "\n")
}

// NFKC exposes the normalization step on its own, for callers that need
// NFKC applied to a substring without the rest of the canonicalization
// pipeline (e.g. entity ids, claim ids compared "modulo normalization").
func NFKC(s string) string {
	return nfkc(s)
}

func nfkc(s string) string {
	return norm.NFKC.String(s)
}

func unifyLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

func collapseWhitespace(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	lastWasSpace := false
	for _, r := range line {
		if isWhitespace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(b.String())
}

func isWhitespace(r rune) bool {
	return r != '\n' && unicode.IsSpace(r)
}

// TokenizeWords splits canonicalized text into lowercase tokens. A token
// is a maximal run of letters, digits, apostrophes (U+0027, U+2019), and
// hyphens.
func TokenizeWords(text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range text {
		if isTokenRune(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func isTokenRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return true
	case r == '\'' || r == '’':
		return true
	case r == '-':
		return true
	default:
		return false
	}
}

// SplitSentences cuts canonicalized text at `.`, `!`, `?`, `;`, retaining
// the separator as part of the preceding sentence. A trailing fragment
// with no terminal separator is included as a final sentence if non-empty.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', ';':
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// SplitParagraphs splits canonicalized text on LF.
func SplitParagraphs(text string) []string {
	parts := strings.Split(text, "\n")
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}
