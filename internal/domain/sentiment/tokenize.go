package sentiment

import (
	"regexp"
	"strings"
)

// tokenPattern matches words of two or more word characters.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Tokens lower-cases text, drops stop words and returns uni- through
// maxN-grams joined by a single space.
func Tokens(text string, minN, maxN int) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	kept := words[:0]
	for _, w := range words {
		if _, stop := englishStopWords[w]; !stop {
			kept = append(kept, w)
		}
	}

	minN, maxN = max(1, minN), max(1, maxN)
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(kept); i++ {
			out = append(out, strings.Join(kept[i:i+n], " "))
		}
	}
	return out
}
