package voice

import (
	"math"
	"sort"
	"strings"

	"omega/internal/canonicalizer"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func computeEntropy(counts map[string]int) float64 {
	total := 0
	for _, v := range counts {
		total += v
	}
	if total == 0 {
		return 0
	}
	totalF := float64(total)
	var h float64
	for _, v := range counts {
		p := float64(v) / totalF
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	k := float64(len(counts))
	if k <= 1 {
		return 0
	}
	return clampRatio(h / math.Log(k))
}

func computeD1Rhythm(sentences []string, text string) []Metric {
	lens := make([]float64, len(sentences))
	for i, s := range sentences {
		lens[i] = float64(len(canonicalizer.TokenizeWords(s)))
	}

	nChars := float64(len([]rune(text)))
	if nChars == 0 {
		nChars = 1
	}
	var punct, excl, quest float64
	for _, r := range text {
		if isASCIIPunctuation(r) {
			punct++
		}
		if r == '!' {
			excl++
		}
		if r == '?' {
			quest++
		}
	}

	paragraphs := canonicalizer.SplitParagraphs(text)
	paraLens := make([]float64, len(paragraphs))
	for i, p := range paragraphs {
		paraLens[i] = float64(len(canonicalizer.SplitSentences(p)))
	}

	return []Metric{
		softMetric(DimensionRhythm, "D1.sentence_len.avg", mean(lens), "words"),
		softMetric(DimensionRhythm, "D1.sentence_len.std", stddev(lens), "words"),
		softMetric(DimensionRhythm, "D1.punctuation.rate", clampRatio(punct/nChars), "ratio"),
		softMetric(DimensionRhythm, "D1.exclamation.rate", clampRatio(excl/nChars), "ratio"),
		softMetric(DimensionRhythm, "D1.question.rate", clampRatio(quest/nChars), "ratio"),
		softMetric(DimensionRhythm, "D1.paragraph_len.avg", mean(paraLens), "sentences"),
	}
}

func isASCIIPunctuation(r rune) bool {
	return strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}

func computeD2Vocabulary(tokens []string, nTokens float64) []Metric {
	unique := map[string]bool{}
	var wordLens []float64
	var stopwordCount, rareCount float64
	for _, t := range tokens {
		unique[t] = true
		wordLens = append(wordLens, float64(len([]rune(t))))
		if isStopword(t) {
			stopwordCount++
		}
		if len([]rune(t)) >= 9 || strings.ContainsAny(t, "'’-") {
			rareCount++
		}
	}
	ttr := float64(len(unique)) / nTokens

	return []Metric{
		softMetric(DimensionVocabulary, "D2.type_token_ratio", clampRatio(ttr), "ratio"),
		softMetric(DimensionVocabulary, "D2.avg_word_len", mean(wordLens), "chars"),
		softMetric(DimensionVocabulary, "D2.stopword_ratio", clampRatio(stopwordCount/nTokens), "ratio"),
		softMetric(DimensionVocabulary, "D2.rare_token_ratio", clampRatio(rareCount/nTokens), "ratio"),
	}
}

func computeD3Texture(tokens []string, nTokens float64) []Metric {
	var adj, verb, sensory, action, state float64
	for _, t := range tokens {
		if isAdjectiveLike(t) {
			adj++
		}
		if isVerbLike(t) {
			verb++
		}
		if isSensory(t) {
			sensory++
		}
		if isActionVerb(t) {
			action++
		}
		if isStateVerb(t) {
			state++
		}
	}
	denom := action + state
	if denom < 1 {
		denom = 1
	}

	return []Metric{
		softMetric(DimensionTexture, "D3.adj_ratio", clampRatio(adj/nTokens), "ratio"),
		softMetric(DimensionTexture, "D3.verb_ratio", clampRatio(verb/nTokens), "ratio"),
		softMetric(DimensionTexture, "D3.sensory_ratio", clampRatio(sensory/nTokens), "ratio"),
		softMetric(DimensionTexture, "D3.show_tell_proxy", clampRatio(action/denom), "ratio"),
	}
}

func computeD4Tonality(tokens []string, nTokens float64) []Metric {
	var pos, neg float64
	for _, t := range tokens {
		switch sentiment(t) {
		case 1:
			pos++
		case -1:
			neg++
		}
	}
	neu := nTokens - pos - neg
	if neu < 0 {
		neu = 0
	}

	return []Metric{
		softMetric(DimensionTonality, "D4.neg_ratio", clampRatio(neg/nTokens), "ratio"),
		softMetric(DimensionTonality, "D4.neu_ratio", clampRatio(neu/nTokens), "ratio"),
		softMetric(DimensionTonality, "D4.pos_ratio", clampRatio(pos/nTokens), "ratio"),
	}
}

func computeD5Structure(tokens []string, sentences []string, nTokens float64) []Metric {
	openers := map[string]int{}
	for _, s := range sentences {
		words := canonicalizer.TokenizeWords(s)
		if len(words) > 0 {
			openers[words[0]]++
		}
	}
	entropy := computeEntropy(openers)

	var connectorCount float64
	for _, t := range tokens {
		if isConnector(t) {
			connectorCount++
		}
	}

	ngrams := map[string]int{}
	if len(tokens) >= 3 {
		for i := 0; i <= len(tokens)-3; i++ {
			gram := tokens[i] + " " + tokens[i+1] + " " + tokens[i+2]
			ngrams[gram]++
		}
	}
	repeats := 0
	for _, v := range ngrams {
		if v >= 2 {
			repeats++
		}
	}
	totalNgrams := float64(len(ngrams))
	if totalNgrams < 1 {
		totalNgrams = 1
	}

	return []Metric{
		softMetric(DimensionStructure, "D5.connector_ratio", clampRatio(connectorCount/nTokens), "ratio"),
		softMetric(DimensionStructure, "D5.repetition_3gram_rate", clampRatio(float64(repeats)/totalNgrams), "ratio"),
		softMetric(DimensionStructure, "D5.sentence_opener_entropy", entropy, "entropy"),
	}
}

func computeD6Signature(tokens []string, nChars float64, text string, topN int) ([]Metric, []string) {
	freq := map[string]int{}
	for _, t := range tokens {
		if !isStopword(t) {
			freq[t]++
		}
	}

	type item struct {
		token string
		count int
	}
	items := make([]item, 0, len(freq))
	for t, c := range freq {
		items = append(items, item{t, c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].token < items[j].token
	})

	if len(items) > topN {
		items = items[:topN]
	}
	signature := make([]string, len(items))
	for i, it := range items {
		signature[i] = it.token
	}
	sort.Strings(signature)
	signature = dedupSorted(signature)

	ellipsis := float64(strings.Count(text, "...") + strings.Count(text, "…"))

	metrics := []Metric{
		hardMetric(DimensionSignature, "D6.ellipsis_rate", clampRatio(ellipsis/nChars), "ratio"),
	}
	return metrics, signature
}

func dedupSorted(s []string) []string {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func computeD7Cadence(paragraphs []string, tokens []string, nTokens float64) []Metric {
	nPara := float64(len(paragraphs))
	if nPara < 1 {
		nPara = 1
	}
	var dialogue float64
	for _, p := range paragraphs {
		if strings.HasPrefix(p, "—") || strings.HasPrefix(p, "-") || strings.Contains(p, `"`) || strings.Contains(p, "«") {
			dialogue++
		}
	}
	var action float64
	for _, t := range tokens {
		if isActionVerb(t) {
			action++
		}
	}
	narration := nPara - dialogue
	if narration < 0 {
		narration = 0
	}

	return []Metric{
		softMetric(DimensionCadence, "D7.action_beat_rate", clampRatio(action/nTokens), "ratio"),
		softMetric(DimensionCadence, "D7.dialogue_ratio", clampRatio(dialogue/nPara), "ratio"),
		softMetric(DimensionCadence, "D7.narration_ratio", clampRatio(narration/nPara), "ratio"),
	}
}

func computeD8Figures(text string, nChars float64) []Metric {
	var quest, parens, colons float64
	for _, r := range text {
		if r == '?' {
			quest++
		}
		if r == '(' || r == ')' {
			parens++
		}
		if r == ':' || r == ';' {
			colons++
		}
	}
	ellipsis := float64(strings.Count(text, "...") + strings.Count(text, "…"))

	return []Metric{
		softMetric(DimensionFigures, "D8.colon_semicolon_rate", clampRatio(colons/nChars), "ratio"),
		softMetric(DimensionFigures, "D8.ellipsis_rate", clampRatio(ellipsis/nChars), "ratio"),
		softMetric(DimensionFigures, "D8.parenthesis_rate", clampRatio(parens/nChars), "ratio"),
		softMetric(DimensionFigures, "D8.rhetorical_q_ratio", clampRatio(quest/nChars), "ratio"),
	}
}
