// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/resolve"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Progress percentages for the processing stage.
const (
	pctValidated = 10
	pctStored    = 30
	pctResolved  = 50
	pctExtracted = 70
	pctMerged    = 90
)

// execute runs imp to a terminal state.
func (i *Importer) execute(imp *Import) {
	start := time.Now()
	res, dedup, err := i.run(imp)

	state := StateComplete
	outcome := outcomeImported
	switch {
	case err == nil && dedup:
		outcome = outcomeDeduplicated
	case errors.Is(err, acquire.ErrDownloadCancelled):
		state, outcome = StateCancelled, outcomeCancelled
	case err != nil:
		state, outcome = StateFailed, outcomeFailed
	}
	i.metrics.observe(outcome, time.Since(start))

	log := i.logger.With(zap.String("import_id", imp.id), zap.String("target", imp.request.Target()))
	switch state {
	case StateComplete:
		i.emit(imp, types.StageComplete, 100, "Import complete", res.FilePath)
		log.Info("import complete",
			zap.String("file", res.FilePath),
			zap.Bool("deduplicated", dedup),
			zap.String("source", string(res.Paper.Source)),
		)
	case StateCancelled:
		log.Info("import cancelled")
	default:
		i.emit(imp, types.StageError, 0, err.Error(), "")
		log.Warn("import failed", zap.Error(err))
	}

	imp.mu.Lock()
	imp.deduplicated = dedup
	imp.mu.Unlock()
	i.finish(imp, res, err, state)
}

// run performs the pipeline steps. The bool result reports whether the
// content was already stored.
func (i *Importer) run(imp *Import) (types.ImportResult, bool, error) {
	ctx := imp.ctx
	if ctx.Err() != nil {
		return types.ImportResult{}, false, i.cancelled(imp)
	}

	i.setState(imp, StateClassifying)
	ref, err := classify(imp.request)
	if err != nil {
		return types.ImportResult{}, false, err
	}

	i.setState(imp, StateFetching)
	data, err := i.fetch(ctx, imp, ref)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, acquire.ErrDownloadCancelled) {
			return types.ImportResult{}, false, i.cancelled(imp)
		}
		return types.ImportResult{}, false, err
	}

	i.setState(imp, StateValidating)
	if !acquire.IsValidDocument(data) {
		return types.ImportResult{}, false, fmt.Errorf("%w: %s", acquire.ErrUnsupportedContent, imp.request.Target())
	}
	i.emit(imp, types.StageProcessing, pctValidated, "Validated document", "")
	if ctx.Err() != nil {
		return types.ImportResult{}, false, i.cancelled(imp)
	}

	i.setState(imp, StateStoring)
	obj, err := i.store.Persist(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return types.ImportResult{}, false, i.cancelled(imp)
		}
		return types.ImportResult{}, false, fmt.Errorf("storing document: %w", err)
	}
	if obj.Written {
		i.metrics.addBytes(len(data))
	}
	i.emit(imp, types.StageProcessing, pctStored, "Stored document", obj.Path)

	// From here on a cancellation releases the stored file. The store deletes
	// it only if no other import still holds or has returned it.
	rollback := func() (types.ImportResult, bool, error) {
		if err := i.store.Remove(obj); err != nil {
			i.logger.Warn("rollback failed", zap.String("import_id", imp.id), zap.Error(err))
		}
		return types.ImportResult{}, false, i.cancelled(imp)
	}
	if ctx.Err() != nil {
		return rollback()
	}

	i.setState(imp, StateResolving)
	resolved := i.lookup(ctx, imp, ref)
	i.emit(imp, types.StageProcessing, pctResolved, "Resolved metadata", obj.Path)
	if ctx.Err() != nil {
		return rollback()
	}

	i.setState(imp, StateExtracting)
	filename := acquire.Filename(ref)
	local, degraded := i.extractor.FromPDF(data, filename)
	for _, fe := range degraded {
		i.metrics.degraded(fe.Field)
	}
	i.emit(imp, types.StageProcessing, pctExtracted, "Extracted metadata", obj.Path)
	if ctx.Err() != nil {
		return rollback()
	}

	i.setState(imp, StateMerging)
	fallback := types.SourcePDF
	if ref.Kind != acquire.KindLocal {
		fallback = types.SourceURL
	}
	draft := Merge(MergeInput{
		Resolved:       resolved,
		Local:          local,
		Filename:       filename,
		URL:            ref.URL,
		FallbackSource: fallback,
	})
	draft.FilePath = obj.Path
	draft.ContentHash = obj.Digest
	i.emit(imp, types.StageProcessing, pctMerged, "Merged metadata", obj.Path)
	if ctx.Err() != nil {
		return rollback()
	}

	i.store.Commit(obj)
	return types.ImportResult{ID: imp.id, Paper: draft, FilePath: obj.Path}, !obj.Written, nil
}

// classify turns a request into a reference. A remote request must name a
// URL, DOI, or arXiv id; a local request is always a path.
func classify(req types.ImportRequest) (acquire.Reference, error) {
	if req.Kind() == types.RequestLocal {
		if req.Target() == "" {
			return acquire.Reference{}, fmt.Errorf("%w: empty path", acquire.ErrInvalidReference)
		}
		return acquire.Reference{Kind: acquire.KindLocal, Path: filepath.Clean(req.Target())}, nil
	}

	ref := acquire.Classify(req.Target())
	switch ref.Kind {
	case acquire.KindArxiv, acquire.KindDOI, acquire.KindURL:
		return ref, nil
	default:
		return acquire.Reference{}, fmt.Errorf("%w: %q is not a URL, DOI, or arXiv id", acquire.ErrInvalidReference, req.Target())
	}
}

// fetch downloads a remote reference or reads a local one.
func (i *Importer) fetch(ctx context.Context, imp *Import, ref acquire.Reference) ([]byte, error) {
	if ref.Kind == acquire.KindLocal {
		return acquire.ReadLocal(ctx, ref.Path)
	}

	fetchURL := i.fetchURL(ctx, ref)
	i.emit(imp, types.StageDownloading, 0, "Downloading "+fetchURL, "")
	return i.fetcher.Download(ctx, fetchURL, func(received, total int64) {
		pct := int(received * 100 / total)
		if pct > 100 {
			pct = 100
		}
		i.emit(imp, types.StageDownloading, pct, fmt.Sprintf("Downloaded %d of %d bytes", received, total), "")
	})
}

// fetchURL prefers an open-access PDF location for DOIs that name no URL.
func (i *Importer) fetchURL(ctx context.Context, ref acquire.Reference) string {
	if ref.Kind == acquire.KindDOI && ref.URL == "" && i.locator != nil {
		pdfURL, err := i.locator.LocatePDF(ctx, ref.ID)
		if err != nil {
			i.logger.Warn("open-access lookup failed", zap.String("doi", ref.ID), zap.Error(err))
		}
		if pdfURL != "" {
			return pdfURL
		}
	}
	return acquire.FetchURL(ref)
}

// lookup queries the catalog for remote references. Failures are logged
// and yield nil.
func (i *Importer) lookup(ctx context.Context, imp *Import, ref acquire.Reference) *resolve.Metadata {
	if i.resolver == nil || ref.Kind == acquire.KindLocal {
		return nil
	}
	md, err := i.resolver.Resolve(ctx, ref)
	if err != nil {
		i.logger.Warn("metadata resolution failed",
			zap.String("import_id", imp.id),
			zap.Stringer("kind", ref.Kind),
			zap.String("id", ref.ID),
			zap.Error(err),
		)
		return nil
	}
	return md
}

func (i *Importer) cancelled(imp *Import) error {
	return fmt.Errorf("%w: import %s", acquire.ErrDownloadCancelled, imp.id)
}
