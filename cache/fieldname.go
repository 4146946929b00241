package cache

import (
	"strings"
	"unicode"
)

// fieldName normalizes a fingerprint field name to lower snake case, so
// "MinPrice", "minPrice" and "min_price" name the same filter. Only letters
// and digits survive; everything else separates words.
func fieldName(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// splitWords breaks s into words at separators, where a lower case letter or
// digit meets an upper case one, where letters meet digits, and before the
// last capital of an acronym ("IDValue" is "ID", "Value").
func splitWords(s string) []string {
	runes := []rune(s)
	words := make([]string, 0, 4)
	start := -1
	flush := func(end int) {
		if start >= 0 {
			words = append(words, string(runes[start:end]))
			start = -1
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}

		prev := runes[i-1]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		switch {
		case unicode.IsUpper(r) && !unicode.IsUpper(prev),
			unicode.IsUpper(r) && nextLower,
			unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush(i)
			start = i
		}
	}
	flush(len(runes))
	return words
}
