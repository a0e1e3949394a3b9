package voice

// Token classification used by the stats analyzer. The actual word
// lists are out of scope (spec.md's Non-goals name lexicon contents
// explicitly); these stand in as small deterministic English tables so
// the analyzer's arithmetic has a concrete classifier to call.

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "to": true, "in": true,
	"on": true, "and": true, "or": true, "but": true, "is": true, "was": true,
	"were": true, "be": true, "been": true, "it": true, "he": true, "she": true,
	"they": true, "we": true, "you": true, "i": true, "that": true, "this": true,
	"with": true, "for": true, "as": true, "at": true, "by": true, "from": true,
}

var connectors = map[string]bool{
	"however": true, "therefore": true, "meanwhile": true, "furthermore": true,
	"nevertheless": true, "consequently": true, "moreover": true, "although": true,
	"because": true, "since": true, "then": true, "thus": true,
}

var sensoryWords = map[string]bool{
	"saw": true, "heard": true, "felt": true, "smelled": true, "tasted": true,
	"glimmered": true, "rustled": true, "echoed": true, "shimmered": true,
	"cold": true, "warm": true, "bright": true, "dark": true,
}

var adjectiveSuffixes = []string{"ous", "ful", "ive", "able", "ible", "al", "ic"}

func isAdjectiveLike(token string) bool {
	for _, suf := range adjectiveSuffixes {
		if len(token) > len(suf) && token[len(token)-len(suf):] == suf {
			return true
		}
	}
	return false
}

var verbSuffixes = []string{"ed", "ing", "ize", "ise", "ate"}

func isVerbLike(token string) bool {
	for _, suf := range verbSuffixes {
		if len(token) > len(suf) && token[len(token)-len(suf):] == suf {
			return true
		}
	}
	return false
}

var actionVerbs = map[string]bool{
	"ran": true, "grabbed": true, "threw": true, "struck": true, "leapt": true,
	"seized": true, "shattered": true, "dashed": true, "hurled": true,
}

var stateVerbs = map[string]bool{
	"was": true, "were": true, "seemed": true, "felt": true, "appeared": true,
	"remained": true, "stood": true, "existed": true,
}

func isSensory(token string) bool    { return sensoryWords[token] }
func isConnector(token string) bool  { return connectors[token] }
func isStopword(token string) bool   { return stopwords[token] }
func isActionVerb(token string) bool { return actionVerbs[token] }
func isStateVerb(token string) bool  { return stateVerbs[token] }

var positiveWords = map[string]bool{
	"joy": true, "bright": true, "hope": true, "triumph": true, "warm": true,
	"love": true, "beautiful": true, "calm": true, "magnificent": true,
}

var negativeWords = map[string]bool{
	"fear": true, "dark": true, "dread": true, "ruin": true, "cold": true,
	"despair": true, "grim": true, "shattered": true, "hatred": true,
}

// sentiment returns 1 for positive, -1 for negative, 0 for neutral.
func sentiment(token string) int {
	switch {
	case positiveWords[token]:
		return 1
	case negativeWords[token]:
		return -1
	default:
		return 0
	}
}
