// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package importer orchestrates document imports: classify the input, fetch
// or read the bytes, validate and store them, then merge catalog metadata
// with locally extracted metadata into a draft. Every in-flight import is
// registered under a UUID so it can be cancelled and inspected.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/extract"
	"github.com/pdiddy/paper-ingest/internal/resolve"
	"github.com/pdiddy/paper-ingest/internal/store"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Fetcher downloads remote documents.
type Fetcher interface {
	Download(ctx context.Context, rawURL string, progress acquire.ProgressFunc) ([]byte, error)
}

// MetadataResolver looks up structured metadata for a reference.
type MetadataResolver interface {
	Resolve(ctx context.Context, ref acquire.Reference) (*resolve.Metadata, error)
}

// PDFLocator finds a direct PDF URL for a DOI. An empty URL means none is known.
type PDFLocator interface {
	LocatePDF(ctx context.Context, doi string) (string, error)
}

// MetadataExtractor derives metadata from document bytes.
type MetadataExtractor interface {
	FromPDF(data []byte, filename string) (extract.Metadata, []extract.FieldError)
}

// Event is a progress event for one import.
type Event struct {
	ImportID string
	types.ImportProgress
}

// Importer runs imports against a content store. Construct it with New and
// release it with Close.
type Importer struct {
	store     *store.Store
	fetcher   Fetcher
	resolver  MetadataResolver
	locator   PDFLocator
	extractor MetadataExtractor
	logger    *zap.Logger
	metrics   *Metrics
	progress  func(Event)
	poolSize  int
	pool      *ants.Pool

	mu     sync.Mutex
	active map[string]*Import
}

// Option configures an Importer.
type Option func(*Importer)

// WithDownloader sets the fetcher for remote documents.
func WithDownloader(f Fetcher) Option {
	return func(i *Importer) { i.fetcher = f }
}

// WithResolver sets the catalog resolver. Without one, imports rely on
// local extraction only.
func WithResolver(r MetadataResolver) Option {
	return func(i *Importer) { i.resolver = r }
}

// WithPDFLocator sets the open-access locator used for bare DOIs.
func WithPDFLocator(l PDFLocator) Option {
	return func(i *Importer) { i.locator = l }
}

// WithExtractor sets the local metadata extractor.
func WithExtractor(e MetadataExtractor) Option {
	return func(i *Importer) { i.extractor = e }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics records import outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// WithProgress registers a callback for progress events. It is called
// synchronously from the import's goroutine, so events of one import arrive
// in order. It must not block.
func WithProgress(fn func(Event)) Option {
	return func(i *Importer) { i.progress = fn }
}

// WithPoolSize bounds how many batch imports run at once.
func WithPoolSize(n int) Option {
	return func(i *Importer) { i.poolSize = n }
}

// New returns an Importer that stores documents in s. Components not set by
// an option get their defaults: a Downloader with one redirect hop and an
// Extractor reading the first pages.
func New(s *store.Store, opts ...Option) (*Importer, error) {
	if s == nil {
		return nil, fmt.Errorf("importer needs a content store")
	}
	i := &Importer{
		store:    s,
		logger:   zap.NewNop(),
		poolSize: types.DefaultConcurrency,
		active:   make(map[string]*Import),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.fetcher == nil {
		i.fetcher = acquire.NewDownloader(nil, types.DefaultImportConfig().Download, i.logger)
	}
	if i.extractor == nil {
		i.extractor = extract.New(extract.WithLogger(i.logger))
	}
	if i.poolSize <= 0 {
		i.poolSize = types.DefaultConcurrency
	}

	pool, err := ants.NewPool(i.poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	i.pool = pool
	return i, nil
}

// Import is a handle on a started import.
type Import struct {
	id      string
	request types.ImportRequest
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu           sync.Mutex
	state        State
	result       types.ImportResult
	err          error
	deduplicated bool
	lastStage    types.Stage
	lastPercent  int
}

// ID returns the import id.
func (imp *Import) ID() string { return imp.id }

// Done is closed when the import reaches a terminal state.
func (imp *Import) Done() <-chan struct{} { return imp.done }

// Wait blocks until the import finishes and returns its result.
func (imp *Import) Wait() (types.ImportResult, error) {
	<-imp.done
	return imp.result, imp.err
}

// State returns the current lifecycle state.
func (imp *Import) State() State {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.state
}

// Deduplicated reports whether the document was already in the store.
// Meaningful only after Done is closed.
func (imp *Import) Deduplicated() bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	return imp.deduplicated
}

// Start registers an import and runs it in its own goroutine. Cancelling
// ctx or calling CancelImport with the returned id cancels it.
func (i *Importer) Start(ctx context.Context, req types.ImportRequest) *Import {
	imp := i.register(ctx, req)
	go i.execute(imp)
	return imp
}

// ImportFromURL imports a remote document identified by a URL, DOI, or
// arXiv id and waits for the result.
func (i *Importer) ImportFromURL(ctx context.Context, rawURL string) (types.ImportResult, error) {
	return i.Start(ctx, types.RemoteRequest(rawURL)).Wait()
}

// ImportFromLocalFile imports a document from disk and waits for the result.
func (i *Importer) ImportFromLocalFile(ctx context.Context, path string) (types.ImportResult, error) {
	return i.Start(ctx, types.LocalRequest(path)).Wait()
}

// CancelImport signals the active import with the given id. It returns
// false when no such import is active.
func (i *Importer) CancelImport(id string) bool {
	i.mu.Lock()
	imp, ok := i.active[id]
	i.mu.Unlock()
	if !ok {
		return false
	}
	imp.cancel()
	i.logger.Info("import cancel requested", zap.String("import_id", id))
	return true
}

// ActiveImports returns the ids of imports that have not yet finished, in
// lexical order.
func (i *Importer) ActiveImports() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	ids := make([]string, 0, len(i.active))
	for id := range i.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Status returns the state of an active import.
func (i *Importer) Status(id string) (State, bool) {
	i.mu.Lock()
	imp, ok := i.active[id]
	i.mu.Unlock()
	if !ok {
		return 0, false
	}
	return imp.State(), true
}

// Close cancels every active import and releases the worker pool.
func (i *Importer) Close() {
	i.mu.Lock()
	for _, imp := range i.active {
		imp.cancel()
	}
	i.mu.Unlock()
	i.pool.Release()
}

func (i *Importer) register(ctx context.Context, req types.ImportRequest) *Import {
	ctx, cancel := context.WithCancel(ctx)
	imp := &Import{
		id:      uuid.NewString(),
		request: req,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   StateCreated,
	}
	i.mu.Lock()
	i.active[imp.id] = imp
	n := len(i.active)
	i.mu.Unlock()
	i.metrics.setActive(n)
	i.logger.Debug("import registered",
		zap.String("import_id", imp.id),
		zap.Stringer("kind", req.Kind()),
		zap.String("target", req.Target()),
	)
	return imp
}

// finish records the outcome, unregisters the import, and releases waiters.
// The import leaves the registry before Done is closed so a waiter never
// observes its own id as active.
func (i *Importer) finish(imp *Import, res types.ImportResult, err error, state State) {
	imp.mu.Lock()
	imp.result, imp.err, imp.state = res, err, state
	imp.mu.Unlock()

	i.mu.Lock()
	delete(i.active, imp.id)
	n := len(i.active)
	i.mu.Unlock()
	i.metrics.setActive(n)

	imp.cancel()
	close(imp.done)
}

func (i *Importer) setState(imp *Import, s State) {
	imp.mu.Lock()
	imp.state = s
	imp.mu.Unlock()
	i.logger.Debug("import state", zap.String("import_id", imp.id), zap.Stringer("state", s))
}

// emit sends a progress event, dropping any that would move percent
// backwards within a stage.
func (i *Importer) emit(imp *Import, stage types.Stage, percent int, msg, filePath string) {
	imp.mu.Lock()
	if stage == imp.lastStage && percent < imp.lastPercent {
		imp.mu.Unlock()
		return
	}
	imp.lastStage, imp.lastPercent = stage, percent
	imp.mu.Unlock()

	if i.progress == nil {
		return
	}
	i.progress(Event{
		ImportID: imp.id,
		ImportProgress: types.ImportProgress{
			Stage:    stage,
			Percent:  percent,
			Message:  msg,
			FilePath: filePath,
		},
	})
}
