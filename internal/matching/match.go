package matching

// Threshold is the maximum edit distance between a normalized guess and a normalized artist name for the two to be
// considered the same artist.
const Threshold = 2

// MatchResult holds, for each of the two guesses, the index of the first candidate artist that satisfied it,
// or -1 when none did.
type MatchResult struct {
	First  int
	Second int
}

// Complete reports whether both guesses found an artist.
func (m MatchResult) Complete() bool {
	return m.First >= 0 && m.Second >= 0
}

// Matches reports whether guess and name refer to the same artist under [Threshold].
func Matches(guess, name string) bool {
	return Distance(Normalize(guess), Normalize(name)) <= Threshold
}

// Match scans names in the order supplied and selects, independently for each guess, the first name within
// [Threshold] of it. Both guesses may select the same index; repeated or garbled input is tolerated.
func Match(guess1, guess2 string, names []string) MatchResult {
	return MatchResult{
		First:  firstMatch(guess1, names),
		Second: firstMatch(guess2, names),
	}
}

func firstMatch(guess string, names []string) int {
	g := Normalize(guess)
	for i, name := range names {
		if Distance(g, Normalize(name)) <= Threshold {
			return i
		}
	}
	return -1
}
