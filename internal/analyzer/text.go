package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/seoscan/seoscan/internal/model"
)

// minDetectionChars is the least text whatlanggo gets a reliable read on.
const minDetectionChars = 40

// detectLanguage returns the ISO 639-3 code for the dominant language of
// text, or empty when the text is too short or detection is unreliable.
func detectLanguage(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minDetectionChars {
		return ""
	}
	info := whatlanggo.Detect(trimmed)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}

// readability computes Flesch reading ease over the page text. Returns nil
// when there is not enough text to measure.
func readability(text string, words []string) *model.Readability {
	if len(words) == 0 {
		return nil
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordCount := float64(len(words))
	avgSentence := wordCount / float64(sentences)
	avgSyllables := float64(syllables) / wordCount
	score := 206.835 - 1.015*avgSentence - 84.6*avgSyllables

	return &model.Readability{
		FleschReadingEase:   math.Round(score*10) / 10,
		AvgSentenceLength:   math.Round(avgSentence*10) / 10,
		AvgSyllablesPerWord: math.Round(avgSyllables*100) / 100,
		Level:               readingLevel(score),
	}
}

func readingLevel(score float64) string {
	switch {
	case score >= 80:
		return "easy"
	case score >= 60:
		return "standard"
	case score >= 30:
		return "difficult"
	default:
		return "very difficult"
	}
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	return n
}

// countSyllables estimates syllables by counting vowel groups. English
// heuristic, good enough for a readability band.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		v := strings.ContainsRune("aeiouy", r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// stopWords are excluded from keyword density so the report surfaces topic
// terms instead of glue words.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "he": true, "her": true, "his": true,
	"i": true, "in": true, "is": true, "it": true, "its": true,
	"not": true, "of": true, "on": true, "or": true, "our": true,
	"she": true, "that": true, "the": true, "their": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true,
	"will": true, "with": true, "you": true, "your": true,
}

// topKeywords returns the most frequent non-stop-words with their density
// relative to the full word count. Ties break alphabetically so output is
// deterministic.
func topKeywords(words []string, limit int) []model.Keyword {
	if len(words) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,;:!?\"'()[]{}"))
		if len(w) < 3 || stopWords[w] {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return nil
	}

	keywords := make([]model.Keyword, 0, len(counts))
	total := float64(len(words))
	for w, c := range counts {
		keywords = append(keywords, model.Keyword{
			Word:    w,
			Count:   c,
			Density: math.Round(float64(c)/total*10000) / 10000,
		})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
