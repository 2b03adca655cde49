// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePDF = "%PDF-1.4\n% sample document\n"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "files"), nil)
	require.NoError(t, err)
	return s
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPersistWritesDigestNamedFile(t *testing.T) {
	s := newTestStore(t)

	obj, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)

	assert.True(t, obj.Written)
	assert.Equal(t, Digest([]byte(samplePDF)), obj.Digest)
	assert.Equal(t, filepath.Join(s.Root(), obj.Digest+".pdf"), obj.Path)

	data, err := os.ReadFile(obj.Path)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, string(data))
	assert.Equal(t, []string{obj.Digest + ".pdf"}, listDir(t, s.Root()), "no temp files left behind")
}

func TestPersistIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)
	info1, err := os.Stat(first.Path)
	require.NoError(t, err)

	second, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)
	info2, err := os.Stat(second.Path)
	require.NoError(t, err)

	assert.True(t, first.Written)
	assert.False(t, second.Written)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
	assert.Len(t, listDir(t, s.Root()), 1)
}

func TestPersistConcurrentIdenticalContent(t *testing.T) {
	s := newTestStore(t)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]Object, workers)
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Persist(context.Background(), []byte(samplePDF))
		}(i)
	}
	wg.Wait()

	written := 0
	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Path, results[i].Path)
		if results[i].Written {
			written++
		}
	}
	assert.Equal(t, 1, written, "exactly one physical write")
	assert.Len(t, listDir(t, s.Root()), 1)
}

func TestPersistCancelledLeavesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Persist(ctx, []byte(samplePDF))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(s.PathFor(Digest([]byte(samplePDF))))
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, listDir(t, s.Root()))
}

func TestRemoveDeletesUncommittedWrite(t *testing.T) {
	s := newTestStore(t)

	obj, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)
	require.True(t, obj.Written)

	require.NoError(t, s.Remove(obj))
	assert.NoFileExists(t, obj.Path)

	// Removing twice is not an error.
	require.NoError(t, s.Remove(obj))
}

func TestRemoveKeepsPreexistingFile(t *testing.T) {
	s := newTestStore(t)
	path := s.PathFor(Digest([]byte(samplePDF)))
	require.NoError(t, os.WriteFile(path, []byte(samplePDF), 0o644))

	obj, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)
	assert.False(t, obj.Written)

	require.NoError(t, s.Remove(obj))
	assert.FileExists(t, path)
}

func TestRemoveKeepsFileCommittedByOtherHolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	writer, err := s.Persist(ctx, []byte(samplePDF))
	require.NoError(t, err)
	require.True(t, writer.Written)

	reader, err := s.Persist(ctx, []byte(samplePDF))
	require.NoError(t, err)
	require.False(t, reader.Written)
	s.Commit(reader)

	require.NoError(t, s.Remove(writer))
	assert.FileExists(t, writer.Path)
}

func TestRemoveWaitsForLastHolder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	writer, err := s.Persist(ctx, []byte(samplePDF))
	require.NoError(t, err)
	reader, err := s.Persist(ctx, []byte(samplePDF))
	require.NoError(t, err)

	require.NoError(t, s.Remove(writer))
	assert.FileExists(t, writer.Path, "another import still holds the file")

	require.NoError(t, s.Remove(reader))
	assert.NoFileExists(t, writer.Path)
}

func TestCommitMakesFilePermanent(t *testing.T) {
	s := newTestStore(t)

	obj, err := s.Persist(context.Background(), []byte(samplePDF))
	require.NoError(t, err)
	s.Commit(obj)

	require.NoError(t, s.Remove(obj))
	assert.FileExists(t, obj.Path)
}

func TestCleanupTempIgnoresMissingFile(t *testing.T) {
	s := newTestStore(t)
	assert.NotPanics(t, func() {
		s.CleanupTemp(filepath.Join(s.Root(), "does-not-exist.tmp"))
		s.CleanupTemp("")
	})
}

func TestSweepTemp(t *testing.T) {
	s := newTestStore(t)

	stale := filepath.Join(s.Root(), ".ingest-stale.tmp")
	fresh := filepath.Join(s.Root(), ".ingest-fresh.tmp")
	other := filepath.Join(s.Root(), "notes.txt")
	for _, p := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	assert.Equal(t, 1, s.SweepTemp(time.Hour))
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New("", nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "root"))
}
