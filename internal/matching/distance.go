package matching

// Distance returns the Levenshtein edit distance between a and b with unit cost for insertion, deletion and
// substitution. Strings are compared rune by rune; callers normalize first.
//
// Runs in O(len(a)*len(b)) time and keeps two rows of the shorter string's length.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	s, t := []rune(a), []rune(b)
	if len(s) == 0 {
		return len(t)
	}
	if len(t) == 0 {
		return len(s)
	}

	if len(s) > len(t) {
		s, t = t, s
	}

	prev := make([]int, len(s)+1)
	curr := make([]int, len(s)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(t); j++ {
		curr[0] = j
		for i := 1; i <= len(s); i++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s)]
}
