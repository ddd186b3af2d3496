package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// guessTotal counts guess resolutions by final status.
	// Labels: status (found, not_found, failed, invalid)
	guessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featguess",
		Name:      "guess_total",
		Help:      "Total guess resolutions by status",
	}, []string{"status"})

	// cacheLookupsTotal counts resolution cache lookups.
	// Labels: result (hit, miss, error)
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featguess",
		Name:      "cache_lookups_total",
		Help:      "Total resolution cache lookups by result",
	}, []string{"result"})

	// autocompleteTotal counts autocomplete requests that reached the catalog.
	autocompleteTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "featguess",
		Name:      "autocomplete_total",
		Help:      "Total autocomplete catalog searches",
	})
)
