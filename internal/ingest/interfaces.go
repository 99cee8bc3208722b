package ingest

import (
	"context"
	"time"
)

// DistributionSource reports the current category distribution of the target
// data store (a GROUP BY COUNT over an external collaborator).
type DistributionSource interface {
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
}

// PolicyRepository is the SCD2 policy boundary. The transactional contract of
// ReplacePolicy is part of the interface, not an implementation detail:
// closing the open row and inserting its replacement succeed or fail together.
type PolicyRepository interface {
	// ActivePolicies returns the priority of every category with an open row.
	ActivePolicies(ctx context.Context) (map[string]Priority, error)
	// ReplacePolicy atomically closes the open row for category (no-op when
	// none exists) and inserts a new open row. On failure the store is left
	// exactly as it was before the call.
	ReplacePolicy(ctx context.Context, category string, newPriority Priority, reason string, now time.Time) error
}

// JobRegistry supplies the crawlable job titles and locations.
type JobRegistry interface {
	// ActiveJobs returns job titles joined to their active policy priority,
	// in registry order.
	ActiveJobs(ctx context.Context) ([]JobTitleEntry, error)
	// ActiveLocations returns the names of active locations, in registry order.
	ActiveLocations(ctx context.Context) ([]string, error)
}

// SearchClient executes one paginated provider search call. Errors carrying a
// quota or rate-limit classification wrap ErrQuotaExceeded or ErrRateLimited.
type SearchClient interface {
	Search(ctx context.Context, query, location, pageToken string) (SearchPage, error)
}

// ArtifactSink persists one raw result page. Artifacts are write-once; the
// deterministic (jobTitle, location, pageIndex) name is the identity.
type ArtifactSink interface {
	Save(ctx context.Context, batchID, jobTitle, location string, pageIndex int, payload []byte) error
}

// RunSink consumes the end-of-run telemetry record.
type RunSink interface {
	Record(ctx context.Context, summary RunSummary) error
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
