package procurement

import (
	"strings"
	"unicode"
)

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "into": {}, "our": {},
	"are": {}, "was": {}, "were": {}, "has": {}, "have": {}, "this": {}, "that": {},
	"all": {}, "any": {}, "other": {}, "such": {}, "its": {}, "per": {}, "not": {},
	"services": {}, "service": {}, "support": {}, "related": {}, "general": {},
	"including": {}, "various": {}, "provide": {}, "provides": {}, "providing": {},
}

// Words splits text into lower-cased letter and digit runs, keeping order and repeats.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsPhrase reports whether the words of phrase appear consecutively in
// text as whole words, ignoring case and punctuation.
func ContainsPhrase(text, phrase string) bool {
	words, want := Words(text), Words(phrase)
	if len(want) == 0 {
		return false
	}
	for i := 0; i+len(want) <= len(words); i++ {
		match := true
		for j, w := range want {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Keywords extracts lower-cased, de-duplicated terms of at least three
// letters, in order of first appearance, skipping common filler words.
func Keywords(texts ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, text := range texts {
		for _, w := range Words(text) {
			if len([]rune(w)) < 3 || IsNumericCode(w) {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// KeywordSet returns Keywords as a set.
func KeywordSet(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Keywords(texts...) {
		set[w] = struct{}{}
	}
	return set
}
