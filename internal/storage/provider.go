// Package storage defines the blob storage boundary for raw crawl artifacts.
// The abstraction keeps the engine independent of whether pages land on the
// local filesystem, in GCS, or in memory during tests.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// BlobStore uploads one immutable object and returns its URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, data []byte) (string, error)
}

// ArtifactStore implements ingest.ArtifactSink over a BlobStore using the
// deterministic page naming scheme. Names are the artifact identity: the same
// (job title, location, page index) always maps to the same object path, and
// objects are never rewritten by this core.
type ArtifactStore struct {
	blobs  BlobStore
	prefix string
}

// NewArtifactStore wires a BlobStore behind the artifact naming scheme.
func NewArtifactStore(blobs BlobStore, prefix string) (*ArtifactStore, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	return &ArtifactStore{
		blobs:  blobs,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Save persists one raw result page.
func (s *ArtifactStore) Save(ctx context.Context, batchID, jobTitle, location string, pageIndex int, payload []byte) error {
	if pageIndex < 1 {
		return fmt.Errorf("page index must be >= 1, got %d", pageIndex)
	}
	if _, err := s.blobs.PutObject(ctx, s.ObjectPath(batchID, jobTitle, location, pageIndex), payload); err != nil {
		return fmt.Errorf("put artifact: %w", err)
	}
	return nil
}

// ObjectPath returns the deterministic object path for a page.
func (s *ArtifactStore) ObjectPath(batchID, jobTitle, location string, pageIndex int) string {
	name := fmt.Sprintf("%s_%s_p%d.json",
		ingest.SafeFilename(jobTitle),
		ingest.SafeFilename(location),
		pageIndex,
	)
	parts := make([]string, 0, 3)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	if batchID != "" {
		parts = append(parts, batchID)
	}
	parts = append(parts, name)
	return strings.Join(parts, "/")
}

// NoOpStore discards artifacts; useful for dry runs where pages are fetched
// but not kept.
type NoOpStore struct{}

// PutObject does nothing and returns an empty URI.
func (NoOpStore) PutObject(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}
