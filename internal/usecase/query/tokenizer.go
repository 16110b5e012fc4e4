package query

import "strings"

// Stop words removed from the keyword leg. Single-word queries made entirely
// of stop words keep their tokens so the lexical leg still has input.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "how": true, "what": true, "when": true, "where": true,
}

const punctuation = ".,!?;:'\"-()[]{}"

// Normalize lowercases the query and collapses runs of whitespace into
// single spaces. The normalized form feeds both the embedder and the cache
// key, so two visually different spellings of the same query share cache
// entries.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Tokenize splits normalized text into keyword tokens: punctuation trimmed,
// stop words dropped, light plural/suffix stemming applied. If every token
// is a stop word the unfiltered tokens are returned instead.
func Tokenize(normalized string) []string {
	words := strings.Fields(normalized)

	all := make([]string, 0, len(words))
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.Trim(word, punctuation)
		if cleaned == "" {
			continue
		}
		stemmed := stem(cleaned)
		all = append(all, stemmed)
		if !stopWords[cleaned] {
			filtered = append(filtered, stemmed)
		}
	}

	if len(filtered) == 0 {
		return all
	}
	return filtered
}

// stem strips common English suffixes. Deliberately conservative: a wrong
// stem pollutes the lexical leg more than a missed one.
func stem(word string) string {
	switch {
	case len(word) > 5 && strings.HasSuffix(word, "ing"):
		return word[:len(word)-3]
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}
