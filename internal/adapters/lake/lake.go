// Package lake implements a local-directory blob store for raw event
// batches, standing in for the cloud object store of a real pipeline.
//
// Blobs are namespaced by import job under raw_events/<jobID>/ and addressed
// by lake://<bucket>/<blob> URIs.
package lake

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

const (
	defaultBucket = "kairyx-data-lake"

	uriScheme  = "lake://"
	rawPrefix  = "raw_events"
	blobLayout = "20060102_150405"
)

// Store writes and reads raw event batches as JSON blobs under a local
// directory.
type Store struct {
	dir    string
	bucket string
	now    func() time.Time
}

// NewStore creates a lake store rooted at dir, creating it if needed.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrNoDir
	}
	s := &Store{
		dir:    dir,
		bucket: defaultBucket,
		now:    time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lake directory: %w", err)
	}
	return s, nil
}

// Upload writes a batch of raw events for an import job and returns the
// blob's lake URI.
func (s *Store) Upload(ctx context.Context, jobID string, events []model.RawEvent) (string, error) {
	if strings.TrimSpace(jobID) == "" {
		return "", ErrNoJobID
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("upload cancelled: %w", err)
	}

	blob := filepath.ToSlash(filepath.Join(rawPrefix, jobID, s.now().UTC().Format(blobLayout)+".json"))
	path := filepath.Join(s.dir, filepath.FromSlash(blob))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}

	data, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("encode raw events: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}

	metrics.RecordLakeObjectWritten(len(data))
	return uriScheme + s.bucket + "/" + blob, nil
}

// Download reads a previously uploaded batch by its lake URI.
func (s *Store) Download(ctx context.Context, uri string) ([]model.RawEvent, error) {
	blob, err := s.blobFromURI(uri)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download cancelled: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(blob)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, uri)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}

	var events []model.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode raw events: %w", err)
	}
	return events, nil
}

// DeleteJob removes every blob belonging to an import job and returns the
// number of blobs removed. Unknown jobs remove zero blobs.
func (s *Store) DeleteJob(ctx context.Context, jobID string) (int, error) {
	if strings.TrimSpace(jobID) == "" {
		return 0, ErrNoJobID
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("delete cancelled: %w", err)
	}

	jobDir := filepath.Join(s.dir, rawPrefix, jobID)
	entries, err := os.ReadDir(jobDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list job blobs: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		removed++
	}
	if err := os.RemoveAll(jobDir); err != nil {
		return 0, fmt.Errorf("remove job blobs: %w", err)
	}
	return removed, nil
}

// blobFromURI validates a lake URI against this store's bucket and returns
// the blob path portion.
func (s *Store) blobFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrBadURI, uri)
	}
	bucket, blob, ok := strings.Cut(rest, "/")
	if !ok || bucket != s.bucket || blob == "" {
		return "", fmt.Errorf("%w: %s", ErrBadURI, uri)
	}
	// Reject anything trying to climb out of the lake directory.
	if strings.Contains(blob, "..") {
		return "", fmt.Errorf("%w: %s", ErrBadURI, uri)
	}
	return blob, nil
}
