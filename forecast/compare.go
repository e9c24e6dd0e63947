package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/sartorproj/plotcast/timeseries"
)

// Comparison is the result of one strategy in a Compare run. Exactly one of
// Result and Err is set.
type Comparison struct {
	Model    Model
	Result   *Result
	Err      error
	Duration time.Duration
}

// Compare fits every strategy on series concurrently and returns their
// results in the order the strategies were given.
func Compare(ctx context.Context, series *timeseries.Series, horizon int, strategies ...Strategy) []Comparison {
	return CompareWithProgress(ctx, series, horizon, nil, strategies...)
}

// CompareWithProgress is Compare with a callback invoked after each strategy
// finishes. Calls to progress are serialized.
func CompareWithProgress(ctx context.Context, series *timeseries.Series, horizon int,
	progress func(done, total int), strategies ...Strategy) []Comparison {
	results := make([]Comparison, len(strategies))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i, s := range strategies {
		wg.Add(1)
		go func(i int, s Strategy) {
			defer wg.Done()

			began := time.Now()
			res, err := s.FitAndForecast(ctx, series, horizon)
			results[i] = Comparison{
				Model:    s.Model(),
				Result:   res,
				Err:      err,
				Duration: time.Since(began),
			}

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(strategies))
			}
			mu.Unlock()
		}(i, s)
	}
	wg.Wait()

	return results
}
