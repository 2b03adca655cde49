// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/importer"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleItems() ([]importer.BatchItem, importer.BatchSummary) {
	paper := types.PaperMetadataDraft{
		Title:       "Attention Is All You Need",
		Authors:     []string{"Ashish Vaswani"},
		Year:        2017,
		Identifier:  "10.48550/arXiv.1706.03762",
		Source:      types.SourceArxiv,
		FilePath:    "data/files/abc123.pdf",
		ContentHash: "abc123",
	}
	items := []importer.BatchItem{
		{Input: "1706.03762", ID: "id-1", Result: types.ImportResult{ID: "id-1", Paper: paper, FilePath: paper.FilePath}},
		{Input: "https://example.com/a.pdf", ID: "id-2", Err: fmt.Errorf("fetch: %w", acquire.ErrDownloadCancelled)},
		{Input: "missing.pdf", ID: "id-3", Err: errors.New("file not found")},
	}
	return items, importer.BatchSummary{Imported: 1, Failed: 1, Cancelled: 1}
}

func TestBuildReport(t *testing.T) {
	report := buildReport(sampleItems())

	require.Len(t, report.Results, 3)
	require.NotNil(t, report.Results[0].Paper)
	assert.Equal(t, "Attention Is All You Need", report.Results[0].Paper.Title)
	assert.True(t, report.Results[1].Cancelled)
	assert.Empty(t, report.Results[1].Error)
	assert.Equal(t, "file not found", report.Results[2].Error)
	assert.Nil(t, report.Results[2].Paper)
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, buildReport(sampleItems()))

	out := buf.String()
	assert.Contains(t, out, "1706.03762: stored data/files/abc123.pdf (arxiv)")
	assert.Contains(t, out, "https://example.com/a.pdf: cancelled")
	assert.Contains(t, out, "missing.pdf: FAILED: file not found")
	assert.Contains(t, out, "Imported: 1, Deduplicated: 0, Failed: 1, Cancelled: 1")
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, buildReport(sampleItems()), false))

	var decoded importReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Summary.Imported)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "10.48550/arXiv.1706.03762", decoded.Results[0].Paper.Identifier)
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, buildReport(sampleItems()), true))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "results")
	assert.Contains(t, decoded, "summary")
}

func TestWriteSidecars(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "meta")
	require.NoError(t, writeSidecars(dir, buildReport(sampleItems())))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc123.yaml", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "abc123.yaml"))
	require.NoError(t, err)
	var paper types.PaperMetadataDraft
	require.NoError(t, yaml.Unmarshal(data, &paper))
	assert.Equal(t, types.SourceArxiv, paper.Source)
}

func TestProgressPrinterThrottlesDownloads(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)
	for _, pct := range []int{0, 5, 10, 25, 30, 60, 100} {
		p.print(importer.Event{ImportID: "0123456789", ImportProgress: types.ImportProgress{Stage: types.StageDownloading, Percent: pct}})
	}
	p.print(importer.Event{ImportID: "0123456789", ImportProgress: types.ImportProgress{Stage: types.StageComplete, Percent: 100}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "[01234567] "))
	assert.Contains(t, lines[4], "complete")
}

func TestClassifyInputs(t *testing.T) {
	items := classifyInputs([]string{"arXiv:1706.03762", "10.1000/xyz123", "papers/local.pdf"})

	require.Len(t, items, 3)
	assert.Equal(t, "arxiv", items[0].Kind)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", items[0].FetchURL)
	assert.Equal(t, "doi", items[1].Kind)
	assert.Equal(t, "https://doi.org/10.1000/xyz123", items[1].FetchURL)
	assert.Equal(t, "local", items[2].Kind)
	assert.Equal(t, "papers/local.pdf", items[2].Path)
	assert.Empty(t, items[2].FetchURL)
	assert.Equal(t, "local", items[2].Filename)
}
