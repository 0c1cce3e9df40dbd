/*
Package batch runs letter generation across a whole dataset.

The pool fans records out to a bounded set of workers, one generation run
per record. Generation calls run concurrently; all learning and letter
writes funnel through the storage layer's own locking, so batch runs do not
interleave half-written state.
*/
package batch

import (
	"context"
	"sync"

	"github.com/casekit/letter-forge/internal/generate"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/storage"
)

// DefaultPoolSize is the number of concurrent generation workers.
const DefaultPoolSize = 3

// Pool runs generation jobs with bounded concurrency.
type Pool struct {
	size         int
	store        storage.Storage
	engine       *learning.Engine
	gen          generate.Generator
	skipLearning bool
}

// RecordResult is the outcome of generating one record's letter.
type RecordResult struct {
	// Index is the record's position in the dataset.
	Index int

	// Result is the generation outcome, nil on error.
	Result *generate.Result

	// Err is the per-record failure, nil on success.
	Err error
}

// NewPool creates a generation pool. A size below 1 falls back to the
// default. skipLearning suppresses learning events for the whole batch
// (settings.learningEnabled = false).
func NewPool(size int, store storage.Storage, engine *learning.Engine, gen generate.Generator, skipLearning bool) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	return &Pool{size: size, store: store, engine: engine, gen: gen, skipLearning: skipLearning}
}

// Run generates one letter per record in the dataset and returns a result
// per record, ordered by record index. A failed record does not abort the
// rest of the batch; its error is carried in its RecordResult.
func (p *Pool) Run(ctx context.Context, templateText string, dataset *record.Dataset, autoLearn bool) []RecordResult {
	results := make([]RecordResult, dataset.Count())

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.size; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.runOne(ctx, templateText, dataset.Records[idx], idx, autoLearn)
			}
		}()
	}

	for idx := 0; idx < dataset.Count(); idx++ {
		// Cancellation wins over a ready worker: once the context is done,
		// every remaining record is marked cancelled instead of dispatched.
		if err := ctx.Err(); err != nil {
			results[idx] = RecordResult{Index: idx, Err: err}
			continue
		}
		select {
		case jobs <- idx:
		case <-ctx.Done():
			results[idx] = RecordResult{Index: idx, Err: ctx.Err()}
		}
	}
	close(jobs)

	wg.Wait()
	return results
}

// runOne generates the letter for a single record.
func (p *Pool) runOne(ctx context.Context, templateText string, rec record.Record, idx int, autoLearn bool) RecordResult {
	opts := generate.Options{
		TemplateText: templateText,
		Record:       rec,
		AutoLearn:    autoLearn,
		SaveLetter:   true,
		SkipLearning: p.skipLearning,
	}

	result, err := generate.Run(ctx, opts, p.store, p.engine, p.gen)
	return RecordResult{Index: idx, Result: result, Err: err}
}
