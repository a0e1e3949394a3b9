package pipeline

import (
	"sort"

	"omega/internal/canonicalizer"
	"omega/internal/hashing"
	"omega/internal/lexicon"
	"omega/internal/omegaerr"
)

// EmotionMode selects the analyzer the Emotion pass delegates to.
type EmotionMode string

const (
	EmotionModeDeterministic EmotionMode = "deterministic"
	EmotionModeHybrid        EmotionMode = "hybrid"
	EmotionModeBoost         EmotionMode = "boost"
)

// EmotionScore is one emotion's normalized intensity.
type EmotionScore struct {
	Emotion   string  `json:"emotion"`
	Hits      int     `json:"hits"`
	Intensity float64 `json:"intensity"`
}

// EmotionPass counts keyword occurrences per emotion over the
// canonicalized, tokenized input and reports per-emotion intensity and a
// dominant label.
type EmotionPass struct {
	mode EmotionMode
}

func NewEmotionPass(mode EmotionMode) *EmotionPass {
	if mode == "" {
		mode = EmotionModeDeterministic
	}
	return &EmotionPass{mode: mode}
}

func (p *EmotionPass) ID() string { return "Emotion" }

func (p *EmotionPass) InputHash(ctx *Context) string {
	normalized, _ := ctx.Artifact("normalized_input")
	text, _ := normalized.(string)
	return hashing.PlainHash(canonicalizer.Canonicalize(text))
}

func (p *EmotionPass) Run(ctx *Context) (map[string]any, error) {
	if p.mode != EmotionModeDeterministic {
		return nil, omegaerr.Newf(omegaerr.CodePipelineEmotionFailed,
			"emotion mode %q requires an external analyzer not available in this build", p.mode)
	}

	normalized, _ := ctx.Artifact("normalized_input")
	text, _ := normalized.(string)
	tokens := canonicalizer.TokenizeWords(canonicalizer.Canonicalize(text))

	counts := map[string]int{}
	total := 0
	for _, tok := range tokens {
		emotion, ok := lexicon.Lookup(tok)
		if !ok {
			continue
		}
		counts[emotion]++
		total++
	}

	scores := make([]EmotionScore, 0, len(lexicon.Emotions()))
	dominant := lexicon.EmotionNeutral
	maxHits := 0
	for _, emotion := range lexicon.Emotions() {
		hits := counts[emotion]
		intensity := 0.0
		if total > 0 {
			intensity = float64(hits) / float64(total)
		}
		scores = append(scores, EmotionScore{Emotion: emotion, Hits: hits, Intensity: intensity})
		if hits > maxHits {
			maxHits = hits
			dominant = emotion
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Emotion < scores[j].Emotion })

	return map[string]any{
		"emotions":        scores,
		"dominant":        dominant,
		"total_hits":      total,
		"lexicon_version": lexicon.Version,
	}, nil
}
