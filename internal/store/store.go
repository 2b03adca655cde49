// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps documents in a content-addressed directory. Each file
// is named by the hex SHA-256 of its bytes, so identical content is written
// at most once.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	fileExt     = ".pdf"
	tempPattern = ".ingest-*.tmp"
	lockStripes = 64
)

// Object describes a stored document.
type Object struct {
	// Path is root/<Digest>.pdf.
	Path string

	// Digest is the hex SHA-256 of the document bytes.
	Digest string

	// Written is true when this call created the file and false when it
	// already existed.
	Written bool
}

// Store is a content-addressed file store rooted at a single directory.
// It is safe for concurrent use.
type Store struct {
	root   string
	logger *zap.Logger

	// Striped by the first digest byte so that the existence check and the
	// promotion of identical content never interleave within this process.
	locks [lockStripes]sync.Mutex

	// holders[n] is guarded by locks[n].
	holders [lockStripes]map[string]*holding
}

// holding tracks the in-flight imports of one digest. A file is removable
// only while owned: created by this process and not yet returned by any
// committed import.
type holding struct {
	refs  int
	owned bool
}

// New creates the root directory if needed and returns a Store.
func New(root string, logger *zap.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("store root is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", root, err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the storage directory.
func (s *Store) Root() string { return s.root }

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PathFor returns the content-addressed path for a digest.
func (s *Store) PathFor(digest string) string {
	return filepath.Join(s.root, digest+fileExt)
}

// Persist stores data under its digest. If the digest-named file already
// exists nothing is written. Otherwise data goes to a temporary file in the
// root which is then renamed into place, so the final path never holds a
// partial file. A cancelled ctx aborts before promotion and returns ctx.Err().
//
// A successful Persist registers the caller as a holder of the digest. Every
// holder must finish with exactly one Commit or Remove.
func (s *Store) Persist(ctx context.Context, data []byte) (Object, error) {
	digest := Digest(data)
	obj := Object{Path: s.PathFor(digest), Digest: digest}

	stripe := stripeOf(digest)
	mu := &s.locks[stripe]
	mu.Lock()
	defer mu.Unlock()

	if _, err := os.Stat(obj.Path); err == nil {
		s.hold(stripe, digest, false)
		s.logger.Debug("content already stored", zap.String("digest", digest))
		return obj, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Object{}, fmt.Errorf("checking %s: %w", obj.Path, err)
	}

	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	tmp, err := os.CreateTemp(s.root, tempPattern)
	if err != nil {
		return Object{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer s.CleanupTemp(tmpPath)

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		return Object{}, fmt.Errorf("writing temp file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	if err := os.Rename(tmpPath, obj.Path); err != nil {
		return Object{}, fmt.Errorf("promoting %s: %w", obj.Path, err)
	}

	obj.Written = true
	s.hold(stripe, digest, true)
	s.logger.Debug("content stored", zap.String("digest", digest), zap.Int("bytes", len(data)))
	return obj, nil
}

// Commit releases a holder whose import succeeded. The file is then
// permanent: no later Remove deletes it.
func (s *Store) Commit(obj Object) {
	stripe := stripeOf(obj.Digest)
	s.locks[stripe].Lock()
	defer s.locks[stripe].Unlock()

	h := s.holders[stripe][obj.Digest]
	if h == nil {
		return
	}
	h.owned = false
	s.release(stripe, obj.Digest, h)
}

// Remove releases a holder whose import was abandoned. The file is deleted
// only when this was the last holder and the file was created by this
// process and never committed. Files that existed before, or that another
// import has returned, are left alone.
func (s *Store) Remove(obj Object) error {
	stripe := stripeOf(obj.Digest)
	s.locks[stripe].Lock()
	defer s.locks[stripe].Unlock()

	h := s.holders[stripe][obj.Digest]
	if h == nil {
		return nil
	}
	if s.release(stripe, obj.Digest, h) > 0 || !h.owned {
		return nil
	}
	if err := os.Remove(obj.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", obj.Path, err)
	}
	s.logger.Debug("content removed", zap.String("digest", obj.Digest))
	return nil
}

func stripeOf(digest string) int {
	return int(digest[0]) % lockStripes
}

// hold registers a holder of digest. The caller holds locks[stripe].
func (s *Store) hold(stripe int, digest string, created bool) {
	if s.holders[stripe] == nil {
		s.holders[stripe] = make(map[string]*holding)
	}
	h := s.holders[stripe][digest]
	if h == nil {
		h = &holding{}
		s.holders[stripe][digest] = h
	}
	h.refs++
	if created {
		h.owned = true
	}
}

// release drops one holder and returns how many remain. The caller holds
// locks[stripe].
func (s *Store) release(stripe int, digest string, h *holding) int {
	h.refs--
	if h.refs <= 0 {
		delete(s.holders[stripe], digest)
		return 0
	}
	return h.refs
}

// CleanupTemp removes a scratch file. Failures are logged, never returned.
func (s *Store) CleanupTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("removing temp file", zap.String("path", path), zap.Error(err))
	}
}

// SweepTemp removes temporary files older than maxAge, left behind by a
// process that died mid-write. It returns the number of files removed.
func (s *Store) SweepTemp(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn("reading store directory", zap.String("root", s.root), zap.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, ".ingest-") || !strings.HasSuffix(name, ".tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		s.CleanupTemp(filepath.Join(s.root, name))
		removed++
	}
	return removed
}
