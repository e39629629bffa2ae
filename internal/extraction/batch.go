package extraction

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"cverve/internal/domain"
)

// FileProcessor extracts a single file. *Orchestrator implements it.
type FileProcessor interface {
	Process(ctx context.Context, index int, in domain.FileInput) domain.ExtractionResult
}

// AggregatorConfig controls batch execution.
type AggregatorConfig struct {
	// Concurrency > 1 processes files in parallel with at most this many in flight.
	Concurrency    int
	RequestTimeout time.Duration
}

// Aggregator runs a batch through a FileProcessor and combines the results in input order.
type Aggregator struct {
	proc FileProcessor
	cfg  AggregatorConfig
}

// NewAggregator creates an Aggregator.
func NewAggregator(proc FileProcessor, cfg AggregatorConfig) *Aggregator {
	return &Aggregator{proc: proc, cfg: cfg}
}

// Run processes every file within the request budget. Files not started when the budget
// runs out are marked skipped. Run never fails; callers decide usability with
// BatchResult.Usable.
func (a *Aggregator) Run(ctx context.Context, files []domain.FileInput) *domain.BatchResult {
	if a.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RequestTimeout)
		defer cancel()
	}

	results := make([]domain.ExtractionResult, len(files))
	started := make([]bool, len(files))

	if a.cfg.Concurrency > 1 && len(files) > 1 {
		var g errgroup.Group
		g.SetLimit(a.cfg.Concurrency)
		for i := range files {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				started[i] = true
				results[i] = a.proc.Process(ctx, i, files[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range files {
			if ctx.Err() != nil {
				break
			}
			log.Printf("extraction.Aggregator.Run: processing file %d of %d", i+1, len(files))
			started[i] = true
			results[i] = a.proc.Process(ctx, i, files[i])
		}
	}

	timedOut := false
	for i := range files {
		if !started[i] {
			timedOut = true
			results[i] = domain.ExtractionResult{
				SourceIndex: i,
				Status:      domain.ExtractionSkipped,
				Format:      Classify(files[i].MediaType, files[i].FileName, files[i].Data),
				Diagnostic:  DiagTimeout,
			}
		}
	}
	if ctx.Err() != nil {
		timedOut = true
	}

	batch := Combine(results)
	batch.TimedOut = timedOut
	log.Printf("extraction.Aggregator.Run: %d of %d files succeeded, %d characters, timed_out=%t",
		batch.SuccessCount, batch.TotalCount, len(batch.CombinedText), batch.TimedOut)
	return batch
}

// Combine builds a BatchResult from results already in input order. Successful texts are
// joined by blank lines; failed and skipped files leave a bracketed marker in their place.
func Combine(results []domain.ExtractionResult) *domain.BatchResult {
	parts := make([]string, 0, len(results))
	success := 0
	for _, r := range results {
		if r.Succeeded() {
			success++
			parts = append(parts, r.Text)
			continue
		}
		parts = append(parts, ErrorMarker(r.SourceIndex, r.Diagnostic))
	}
	return &domain.BatchResult{
		Results:      results,
		CombinedText: strings.Join(parts, "\n\n"),
		SuccessCount: success,
		TotalCount:   len(results),
	}
}

// ErrorMarker is the inline placeholder for a file that produced no text.
func ErrorMarker(index int, diag string) string {
	diag = strings.ReplaceAll(diag, "]", ")")
	return fmt.Sprintf("[Error processing file %d: %s]", index+1, diag)
}
