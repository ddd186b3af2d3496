package matching

import "strings"

// Dedupe collapses candidates whose normalized names are equal, keeping the one with the larger popularity.
//
// Every pair i<j is compared; when popularity(i) > popularity(j) candidate j is dropped, otherwise candidate i is
// dropped, so ties discard the lower index. At most one candidate survives per normalized name and survivors keep
// their original relative order. Input is bounded by a search page, so the quadratic scan is fine.
func Dedupe[T any](candidates []T, name func(T) string, popularity func(T) int) []T {
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = Normalize(name(c))
	}

	dropped := make([]bool, len(candidates))
	for i := range candidates {
		for j := i + 1; j < len(candidates) && !dropped[i]; j++ {
			if dropped[j] || keys[i] != keys[j] {
				continue
			}
			if popularity(candidates[i]) > popularity(candidates[j]) {
				dropped[j] = true
			} else {
				dropped[i] = true
			}
		}
	}

	out := make([]T, 0, len(candidates))
	for i, c := range candidates {
		if !dropped[i] {
			out = append(out, c)
		}
	}
	return out
}

// FilterPrefix keeps the candidates whose normalized name starts with the normalized query.
func FilterPrefix[T any](candidates []T, query string, name func(T) string) []T {
	q := Normalize(query)
	out := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(Normalize(name(c)), q) {
			out = append(out, c)
		}
	}
	return out
}
