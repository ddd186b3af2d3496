// package matching implements the fuzzy name comparison used to resolve user guesses against catalog artists.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a display name for comparison: lowercases it, removes every whitespace character and
// strips combining diacritical marks after canonical decomposition ("Beyoncé" -> "beyonce", "Jay Z" -> "jayz").
func Normalize(name string) string {
	name = strings.ToLower(name)

	// A transformer chain is stateful, so one is built per call.
	t := transform.Chain(
		runes.Remove(runes.Predicate(unicode.IsSpace)),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
	)

	out, _, err := transform.String(t, name)
	if err != nil {
		return stripSpaces(name)
	}
	return out
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
