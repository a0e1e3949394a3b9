package pipeline

import (
	"strings"

	"omega/internal/canonicalizer"
	"omega/internal/hashing"
)

// IntakePass produces normalized_input, char_count, word_count from the
// raw input.
type IntakePass struct{}

func NewIntakePass() *IntakePass { return &IntakePass{} }

func (p *IntakePass) ID() string { return "Intake" }

func (p *IntakePass) InputHash(ctx *Context) string {
	return hashing.PlainHash(ctx.RawInput)
}

func (p *IntakePass) Run(ctx *Context) (map[string]any, error) {
	normalized := strings.TrimSpace(ctx.RawInput)
	words := canonicalizer.TokenizeWords(canonicalizer.Canonicalize(normalized))
	return map[string]any{
		"normalized_input": normalized,
		"char_count":       len(normalized),
		"word_count":       len(words),
	}, nil
}
