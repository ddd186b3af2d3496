package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// BatchOpts contains configuration for resolving many guesses at once.
type BatchOpts struct {
	Market     string  // Market override applied to every guess
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Resolutions started per second (default: 5)
}

// BatchResult collects per-guess results in input order.
type BatchResult struct {
	Inputs   []string
	Results  []GuessResult
	Found    int
	NotFound int
	Failed   int
	Invalid  int
}

type batchJob struct {
	index int
	input string
}

// ResolveBatch resolves inputs concurrently with a worker pool and a rate limit on how fast
// resolutions start. Cancelling ctx stops scheduling; guesses never started are reported as Failed.
func (r *GuessResolver) ResolveBatch(ctx context.Context, prog chan<- ProgressUpdate, inputs []string, opts BatchOpts) *BatchResult {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BatchResult{
		Inputs:  inputs,
		Results: make([]GuessResult, len(inputs)),
	}
	started := make([]bool, len(inputs))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := r.Resolve(ctx, GuessRequest{Input: job.input, Market: opts.Market}, nil)

				mu.Lock()
				result.Results[job.index] = res
				completed++
				step := completed
				mu.Unlock()

				sendProgress(prog, batchUpdate(step, len(inputs), job.input, res))
			}
		}()
	}

	var stopErr error
	for i, input := range inputs {
		if err := limiter.Wait(ctx); err != nil {
			stopErr = err
			break
		}
		started[i] = true
		jobs <- batchJob{index: i, input: input}
	}
	close(jobs)
	wg.Wait()

	for i, res := range result.Results {
		if !started[i] {
			res = GuessResult{Status: Failed, Phase: CacheCheck, Err: fmt.Errorf("not started: %w", stopErr)}
			result.Results[i] = res
		}
		switch res.Status {
		case Found:
			result.Found++
		case NotFound:
			result.NotFound++
		case Failed:
			result.Failed++
		case Invalid:
			result.Invalid++
		}
	}
	return result
}
