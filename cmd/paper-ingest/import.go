// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/extract"
	"github.com/pdiddy/paper-ingest/internal/importer"
	"github.com/pdiddy/paper-ingest/internal/logging"
	"github.com/pdiddy/paper-ingest/internal/resolve"
	"github.com/pdiddy/paper-ingest/internal/secrets"
	"github.com/pdiddy/paper-ingest/internal/store"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// staleTempAge is how old a leftover temp file in the store must be before
// a new run removes it.
const staleTempAge = time.Hour

var importCmd = &cobra.Command{
	Use:   "import [urls, DOIs, arXiv ids, or paths...]",
	Short: "Import papers from URLs, DOIs, arXiv ids, or local PDF files",
	Long: `Import fetches or reads each input, validates that it is a PDF, stores it
under its SHA-256 digest, and merges catalog metadata (arXiv, CrossRef,
Semantic Scholar) with metadata extracted from the document itself.

Inputs run concurrently. Importing the same bytes twice reuses the stored
file. Ctrl-C cancels every running import and removes files they wrote.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.Bool("json", false, "output results as JSON instead of YAML")
	f.String("metadata-dir", "", "also write each draft to <dir>/<sha256>.yaml")
	f.String("metrics-textfile", "", "write Prometheus metrics to this file when done")
	f.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	f.Int("concurrency", 0, "number of imports to run at once (default 4)")
	f.Bool("no-doi-lookup", false, "skip CrossRef and Semantic Scholar lookups for DOIs")

	bindFlag(keyTimeout, f.Lookup("timeout"))
	bindFlag(keyConcurrency, f.Lookup("concurrency"))

	rootCmd.AddCommand(importCmd)
}

// importOutput is one entry of the import report.
type importOutput struct {
	Input        string                    `json:"input" yaml:"input"`
	ID           string                    `json:"id" yaml:"id"`
	Deduplicated bool                      `json:"deduplicated,omitempty" yaml:"deduplicated,omitempty"`
	Cancelled    bool                      `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Error        string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Paper        *types.PaperMetadataDraft `json:"paper,omitempty" yaml:"paper,omitempty"`
}

// importReport is printed to stdout after a run.
type importReport struct {
	Results []importOutput        `json:"results" yaml:"results"`
	Summary importer.BatchSummary `json:"summary" yaml:"summary"`
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	if noLookup, _ := cmd.Flags().GetBool("no-doi-lookup"); noLookup {
		cfg.Resolve.DOILookup = false
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	asJSON, _ := cmd.Flags().GetBool("json")
	metadataDir, _ := cmd.Flags().GetString("metadata-dir")
	metricsFile, _ := cmd.Flags().GetString("metrics-textfile")

	logger, err := logging.New(cfg.LogMode, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	loaded, err := secrets.Load(secrets.DefaultDir, logger)
	if err != nil {
		return err
	}
	secrets.ApplyResolver(&cfg.Resolve, loaded)

	st, err := store.New(cfg.Store.FilesDir(), logger)
	if err != nil {
		return err
	}
	if n := st.SweepTemp(staleTempAge); n > 0 {
		logger.Info("removed stale temp files", zap.Int("count", n))
	}

	reg := prometheus.NewRegistry()
	im, err := importer.New(st,
		importer.WithDownloader(acquire.NewDownloader(&http.Client{Timeout: cfg.Download.Timeout}, cfg.Download, logger)),
		importer.WithResolver(resolve.New(cfg.Resolve, resolve.WithLogger(logger))),
		importer.WithPDFLocator(acquire.NewOpenAlex(nil, cfg.Resolve)),
		importer.WithExtractor(extract.New(extract.WithLogger(logger))),
		importer.WithLogger(logger),
		importer.WithMetrics(importer.NewMetrics(reg)),
		importer.WithPoolSize(cfg.Concurrency),
		importer.WithProgress(newProgressPrinter(cmd.ErrOrStderr()).print),
	)
	if err != nil {
		return err
	}
	defer im.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, sum := im.ImportBatch(ctx, args)
	report := buildReport(items, sum)
	printStatus(cmd.ErrOrStderr(), report)

	if metadataDir != "" {
		if err := writeSidecars(metadataDir, report); err != nil {
			return err
		}
	}
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if err := writeReport(cmd.OutOrStdout(), report, asJSON); err != nil {
		return err
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d import(s) failed", sum.Failed)
	}
	return nil
}

func buildReport(items []importer.BatchItem, sum importer.BatchSummary) importReport {
	report := importReport{Summary: sum, Results: make([]importOutput, 0, len(items))}
	for _, item := range items {
		out := importOutput{Input: item.Input, ID: item.ID, Deduplicated: item.Deduplicated}
		switch {
		case item.Err == nil:
			paper := item.Result.Paper
			out.Paper = &paper
		case errors.Is(item.Err, acquire.ErrDownloadCancelled):
			out.Cancelled = true
		default:
			out.Error = item.Err.Error()
		}
		report.Results = append(report.Results, out)
	}
	return report
}

// printStatus writes one line per input in the style of the other pipeline
// stages, then a summary.
func printStatus(w io.Writer, r importReport) {
	for _, out := range r.Results {
		switch {
		case out.Paper != nil && out.Deduplicated:
			fmt.Fprintf(w, "%s: already stored at %s\n", out.Input, out.Paper.FilePath)
		case out.Paper != nil:
			fmt.Fprintf(w, "%s: stored %s (%s)\n", out.Input, out.Paper.FilePath, out.Paper.Source)
		case out.Cancelled:
			fmt.Fprintf(w, "%s: cancelled\n", out.Input)
		default:
			fmt.Fprintf(w, "%s: FAILED: %s\n", out.Input, out.Error)
		}
	}
	s := r.Summary
	fmt.Fprintf(w, "\nImported: %d, Deduplicated: %d, Failed: %d, Cancelled: %d\n",
		s.Imported, s.Deduplicated, s.Failed, s.Cancelled)
}

func writeReport(w io.Writer, r importReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// writeSidecars writes each successful draft to dir/<sha256>.yaml.
func writeSidecars(dir string, r importReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	for _, out := range r.Results {
		if out.Paper == nil {
			continue
		}
		data, err := yaml.Marshal(out.Paper)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}
		path := filepath.Join(dir, out.Paper.ContentHash+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// progressPrinter writes coarse progress lines: every stage change and every
// quarter of a download.
type progressPrinter struct {
	w    io.Writer
	mu   sync.Mutex
	last map[string]types.ImportProgress
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: make(map[string]types.ImportProgress)}
}

func (p *progressPrinter) print(e importer.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, seen := p.last[e.ImportID]
	if seen && prev.Stage == e.Stage && e.Stage == types.StageDownloading && e.Percent < prev.Percent+25 && e.Percent != 100 {
		return
	}
	p.last[e.ImportID] = e.ImportProgress
	if e.Stage == types.StageComplete || e.Stage == types.StageError {
		delete(p.last, e.ImportID)
	}
	fmt.Fprintf(p.w, "[%s] %-11s %3d%% %s\n", shortID(e.ImportID), e.Stage, e.Percent, e.Message)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
