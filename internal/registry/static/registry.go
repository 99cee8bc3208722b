// Package static implements a config-sourced job/location registry for
// deployments without a relational database.
package static

import (
	"context"
	"fmt"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// Registry serves fixed job and location lists in their configured order.
type Registry struct {
	jobs      []ingest.JobTitleEntry
	locations []string
}

// New validates the configured lists and builds a Registry.
func New(jobs []ingest.JobTitleEntry, locations []string) (*Registry, error) {
	for _, j := range jobs {
		if j.JobTitle == "" {
			return nil, fmt.Errorf("static job entry with empty title")
		}
		if !j.Priority.Valid() {
			return nil, fmt.Errorf("static job %q has invalid priority %q", j.JobTitle, j.Priority)
		}
	}
	return &Registry{jobs: jobs, locations: locations}, nil
}

// ActiveJobs returns the configured jobs.
func (r *Registry) ActiveJobs(_ context.Context) ([]ingest.JobTitleEntry, error) {
	out := make([]ingest.JobTitleEntry, len(r.jobs))
	copy(out, r.jobs)
	return out, nil
}

// ActiveLocations returns the configured locations.
func (r *Registry) ActiveLocations(_ context.Context) ([]string, error) {
	out := make([]string, len(r.locations))
	copy(out, r.locations)
	return out, nil
}
