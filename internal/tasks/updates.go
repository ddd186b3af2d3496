package tasks

import (
	"fmt"

	"github.com/desertthunder/featguess/internal/models"
)

// ProgressUpdate represents a progress event during a resolution.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Resolution phase
	Step    int    // Current step number
	Total   int    // Total steps
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase enumerates the states a guess moves through.
//
// CacheCheck → CatalogSearch → Matching → Persisted | Unresolved
type Phase int

const (
	CacheCheck Phase = iota
	CatalogSearch
	Matching
	Persisted
	Unresolved
)

func (p Phase) String() string {
	switch p {
	case CacheCheck:
		return "cache_check"
	case CatalogSearch:
		return "catalog_search"
	case Matching:
		return "matching"
	case Persisted:
		return "persisted"
	case Unresolved:
		return "unresolved"
	default:
		return ""
	}
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	return p == Persisted || p == Unresolved
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

const resolveSteps = 4

func cacheCheckUpdate(guess1, guess2 string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheCheck,
		Step:    1,
		Total:   resolveSteps,
		Message: fmt.Sprintf("Checking cache for %s & %s...", guess1, guess2),
	}
}

func catalogSearchUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CatalogSearch,
		Step:    2,
		Total:   resolveSteps,
		Message: fmt.Sprintf("Searching catalog for %q...", query),
	}
}

func matchingUpdate(results int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Matching,
		Step:    3,
		Total:   resolveSteps,
		Message: fmt.Sprintf("Matching %d results...", results),
	}
}

func persistedUpdate(track *models.Track, cached bool) ProgressUpdate {
	source := "resolved"
	if cached {
		source = "cached"
	}
	a := track.Artists()
	return ProgressUpdate{
		Phase:   Persisted,
		Step:    resolveSteps,
		Total:   resolveSteps,
		Message: fmt.Sprintf("✓ %s by %s & %s (%s)", track.Name(), a[0].Name(), a[1].Name(), source),
		Data:    track,
	}
}

func unresolvedUpdate(guess1, guess2 string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Unresolved,
		Step:    resolveSteps,
		Total:   resolveSteps,
		Message: fmt.Sprintf("✗ no track features both %s and %s", guess1, guess2),
	}
}

func batchUpdate(step, total int, input string, res GuessResult) ProgressUpdate {
	mark := "✗"
	if res.Status == Found {
		mark = "✓"
	}
	return ProgressUpdate{
		Phase:   res.Phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s (%s)", step, total, mark, input, res.Status),
		Data:    res,
	}
}
