package subgraph

import (
	"context"
	"fmt"
	"runtime"

	"chalet/internal/apperror"
	"chalet/internal/model"
	"chalet/internal/preprocess"
)

// BuildResult pairs one OD pair's built subgraph with its originating index
// so callers can reassemble results in input order regardless of completion
// order.
type BuildResult struct {
	Index int
	Sub   *Subgraph
	Err   error
}

// BuildAll constructs every pair's subgraph using a bounded worker pool
// sized by numProc (falling back to GOMAXPROCS when numProc <= 0), per §5's
// share-nothing parallel region and D5's pooling contract. Each worker
// receives only read-only references and returns a fresh allocation; a
// worker panic is recovered and reported as a per-pair CodeDataInconsistency
// error rather than crashing the pool.
func BuildAll(ctx context.Context, pairs []model.ODPair, pre *preprocess.Result, p preprocess.Params, numProc int) []BuildResult {
	workers := numProc
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	results := make([]BuildResult, len(pairs))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range pairs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				close(jobs)
				return
			}
		}
		close(jobs)
	}()

	workerDone := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { workerDone <- struct{}{} }()
			for idx := range jobs {
				results[idx] = buildSafely(ctx, idx, pairs[idx], pre, p)
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-workerDone
	}
	<-done

	return results
}

func buildSafely(ctx context.Context, idx int, pair model.ODPair, pre *preprocess.Result, p preprocess.Params) (res BuildResult) {
	res.Index = idx
	defer func() {
		if r := recover(); r != nil {
			res.Err = apperror.Inconsistency(fmt.Sprintf("panic building subgraph for pair %d->%d: %v", pair.OriginID, pair.DestinationID, r))
			res.Sub = &Subgraph{}
		}
	}()
	res.Sub = Build(ctx, pair, pre, p)
	return res
}
