package postgres

import (
	"context"
	"fmt"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

const (
	activeJobsSQL = `
SELECT j.job_title, p.priority
FROM jobs_base j
JOIN ingestion_policy p ON j.internal_category = p.internal_category
WHERE p.effective_to IS NULL
ORDER BY j.job_title`

	activeLocationsSQL = `
SELECT location_name
FROM locations_base
WHERE is_active = TRUE
ORDER BY location_name`
)

// Registry implements ingest.JobRegistry over the jobs_base and
// locations_base tables. Results are ordered by name so repeated reads feed
// the scheduler identical input and plans stay deterministic.
type Registry struct {
	conn Conn
}

// NewRegistry creates a Registry over an existing connection pool.
func NewRegistry(conn Conn) (*Registry, error) {
	if conn == nil {
		return nil, fmt.Errorf("postgres connection is required")
	}
	return &Registry{conn: conn}, nil
}

// ActiveJobs returns job titles joined to their active policy priority.
func (r *Registry) ActiveJobs(ctx context.Context) ([]ingest.JobTitleEntry, error) {
	rows, err := r.conn.Query(ctx, activeJobsSQL)
	if err != nil {
		return nil, fmt.Errorf("query active jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ingest.JobTitleEntry
	for rows.Next() {
		var title, priority string
		if err := rows.Scan(&title, &priority); err != nil {
			return nil, fmt.Errorf("scan active job: %w", err)
		}
		jobs = append(jobs, ingest.JobTitleEntry{
			JobTitle: title,
			Priority: ingest.Priority(priority),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active jobs: %w", err)
	}
	return jobs, nil
}

// ActiveLocations returns the names of all active locations.
func (r *Registry) ActiveLocations(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, activeLocationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query active locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan active location: %w", err)
		}
		locations = append(locations, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active locations: %w", err)
	}
	return locations, nil
}
