// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// BatchItem is the outcome of one input of a batch.
type BatchItem struct {
	Input        string
	ID           string
	Result       types.ImportResult
	Deduplicated bool
	Err          error
}

// BatchSummary counts batch outcomes.
type BatchSummary struct {
	Imported     int `json:"imported" yaml:"imported"`
	Deduplicated int `json:"deduplicated" yaml:"deduplicated"`
	Failed       int `json:"failed" yaml:"failed"`
	Cancelled    int `json:"cancelled" yaml:"cancelled"`
}

// RequestFor builds an import request from command-line style input:
// anything the classifier recognises as remote is a remote request, the
// rest are local paths.
func RequestFor(input string) types.ImportRequest {
	if acquire.Classify(input).Kind == acquire.KindLocal {
		return types.LocalRequest(input)
	}
	return types.RemoteRequest(input)
}

// ImportBatch imports every input on the worker pool and waits for all of
// them. Every import is registered before any runs, so queued imports show
// up in ActiveImports and can be cancelled. Items are returned in input order.
func (i *Importer) ImportBatch(ctx context.Context, inputs []string) ([]BatchItem, BatchSummary) {
	items := make([]BatchItem, len(inputs))
	imports := make([]*Import, len(inputs))
	for n, input := range inputs {
		imports[n] = i.register(ctx, RequestFor(input))
		items[n] = BatchItem{Input: input, ID: imports[n].id}
	}

	var wg sync.WaitGroup
	for n, imp := range imports {
		wg.Add(1)
		err := i.pool.Submit(func() {
			defer wg.Done()
			i.execute(imp)
		})
		if err != nil {
			wg.Done()
			i.finish(imp, types.ImportResult{}, fmt.Errorf("scheduling import %d: %w", n, err), StateFailed)
		}
	}
	wg.Wait()

	var sum BatchSummary
	for n, imp := range imports {
		res, err := imp.Wait()
		items[n].Result, items[n].Err = res, err
		items[n].Deduplicated = err == nil && imp.Deduplicated()
		switch {
		case err == nil && items[n].Deduplicated:
			sum.Deduplicated++
		case err == nil:
			sum.Imported++
		case errors.Is(err, acquire.ErrDownloadCancelled):
			sum.Cancelled++
		default:
			sum.Failed++
		}
	}
	return items, sum
}
