// Package lexicon provides a small, process-wide, lazily-initialized
// keyword-to-emotion table for the pipeline's deterministic Emotion
// pass. The real lexicon contents are out of scope for this module
// (spec.md §1 names "lexicon contents for emotion ... classification" as
// a collaborator supplied by the embedding application); this package
// ships a minimal standing-in table so the Emotion pass is independently
// testable and runnable without an external dependency.
package lexicon

import "sync"

// Version identifies the lexicon revision. Included in Emotion pass
// artifacts so a run's provenance records which table produced it.
const Version = "emotion-lexicon-stub-v1"

var (
	once  sync.Once
	table map[string]string
)

// Emotions lists the fixed set of labels this lexicon recognizes.
const (
	EmotionJoy      = "joy"
	EmotionSadness  = "sadness"
	EmotionAnger    = "anger"
	EmotionFear     = "fear"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

func init() {
	loadTable()
}

func loadTable() {
	once.Do(func() {
		table = map[string]string{
			"happy": EmotionJoy, "joy": EmotionJoy, "delighted": EmotionJoy, "glad": EmotionJoy, "smiled": EmotionJoy,
			"sad": EmotionSadness, "grief": EmotionSadness, "sorrow": EmotionSadness, "wept": EmotionSadness, "mourned": EmotionSadness,
			"angry": EmotionAnger, "furious": EmotionAnger, "rage": EmotionAnger, "shouted": EmotionAnger, "hated": EmotionAnger,
			"afraid": EmotionFear, "terrified": EmotionFear, "fear": EmotionFear, "dread": EmotionFear, "trembled": EmotionFear,
			"surprised": EmotionSurprise, "shocked": EmotionSurprise, "startled": EmotionSurprise, "astonished": EmotionSurprise,
		}
	})
}

// Lookup returns the emotion label for a lowercase token, and whether the
// token was found in the table.
func Lookup(token string) (string, bool) {
	emotion, ok := table[token]
	return emotion, ok
}

// Emotions returns the fixed, sorted set of labels this lexicon can emit
// (excluding "neutral", which is a fallback label rather than a
// keyword-driven one).
func Emotions() []string {
	return []string{EmotionAnger, EmotionFear, EmotionJoy, EmotionSadness, EmotionSurprise}
}
