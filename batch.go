package glosslive

import (
	"context"
	"sync"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// TranslateBatch translates independent requests with up to concurrency
// calls in flight and returns results in request order. A failed request
// does not stop the others. concurrency <= 0 means one at a time.
//
// Requests in a batch are unrelated texts; transcripts of a live session
// should go through Translate one by one so history order is kept.
func (t *Translator) TranslateBatch(ctx context.Context, reqs []Request, concurrency int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(reqs) {
		concurrency = len(reqs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := t.Translate(ctx, reqs[i])
				results[i] = BatchResult{Index: i, Result: res, Err: err}
			}
		}()
	}

	for i := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				results[j] = BatchResult{Index: j, Err: &TransportError{Message: "request cancelled", Cause: err}}
			}
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	t.logger.Debugw("batch complete", "requests", len(reqs), "concurrency", concurrency)
	return results
}
