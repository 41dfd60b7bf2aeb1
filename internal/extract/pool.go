package extract

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Input is one document handed to the batch extractor.
type Input struct {
	DocID string
	Text  string
}

// Fault records a per-document extraction failure. Faults never abort
// the batch; a run that processed at least one document succeeds.
type Fault struct {
	DocID string
	Err   error
}

// ExtractBatch extracts metadata for all inputs on a bounded worker
// pool. Results come back sorted by DocID so downstream consolidation is
// deterministic regardless of scheduling. workers <= 0 selects half the
// CPUs, minimum one.
func (e *Extractor) ExtractBatch(ctx context.Context, inputs []Input, workers int) ([]*Metadata, []Fault, error) {
	if workers < 1 {
		workers = runtime.NumCPU() / 2
		if workers < 1 {
			workers = 1
		}
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		metas  []*Metadata
		faults []Fault
	)

	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}

		in := in
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			meta, err := e.Extract(ctx, in.DocID, in.Text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				faults = append(faults, Fault{DocID: in.DocID, Err: err})
				return
			}
			metas = append(metas, meta)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			faults = append(faults, Fault{DocID: in.DocID, Err: submitErr})
			mu.Unlock()
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].DocID < metas[j].DocID })
	sort.Slice(faults, func(i, j int) bool { return faults[i].DocID < faults[j].DocID })
	return metas, faults, nil
}
