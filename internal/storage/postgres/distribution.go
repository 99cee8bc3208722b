package postgres

import (
	"context"
	"fmt"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

const categoryCountsSQL = `
SELECT category, COUNT(*) AS count
FROM job_embeddings
GROUP BY category
ORDER BY category`

// Distribution implements ingest.DistributionSource over the target store's
// job_embeddings table.
type Distribution struct {
	conn Conn
}

// NewDistribution creates a Distribution over an existing connection pool.
func NewDistribution(conn Conn) (*Distribution, error) {
	if conn == nil {
		return nil, fmt.Errorf("postgres connection is required")
	}
	return &Distribution{conn: conn}, nil
}

// CategoryCounts returns the per-category item counts.
func (d *Distribution) CategoryCounts(ctx context.Context) ([]ingest.CategoryCount, error) {
	rows, err := d.conn.Query(ctx, categoryCountsSQL)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var counts []ingest.CategoryCount
	for rows.Next() {
		var c ingest.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}
