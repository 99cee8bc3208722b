package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

const (
	activePoliciesSQL = `
SELECT internal_category, priority
FROM ingestion_policy
WHERE effective_to IS NULL`

	closePolicySQL = `
UPDATE ingestion_policy
SET effective_to = $1
WHERE internal_category = $2 AND effective_to IS NULL`

	insertPolicySQL = `
INSERT INTO ingestion_policy (internal_category, priority, effective_from, reason)
VALUES ($1, $2, $3, $4)`
)

// PolicyStore implements ingest.PolicyRepository over the SCD2
// ingestion_policy table. Rows are never updated in place beyond stamping
// effective_to; history is never deleted.
type PolicyStore struct {
	conn Conn
}

// NewPolicyStore creates a PolicyStore over an existing connection pool.
func NewPolicyStore(conn Conn) (*PolicyStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("postgres connection is required")
	}
	return &PolicyStore{conn: conn}, nil
}

// ActivePolicies returns the priority of every category with an open row.
func (s *PolicyStore) ActivePolicies(ctx context.Context) (map[string]ingest.Priority, error) {
	rows, err := s.conn.Query(ctx, activePoliciesSQL)
	if err != nil {
		return nil, fmt.Errorf("query active policies: %w", err)
	}
	defer rows.Close()

	active := make(map[string]ingest.Priority)
	for rows.Next() {
		var category, priority string
		if err := rows.Scan(&category, &priority); err != nil {
			return nil, fmt.Errorf("scan active policy: %w", err)
		}
		active[category] = ingest.Priority(priority)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active policies: %w", err)
	}
	return active, nil
}

// ReplacePolicy closes the category's open row (a no-op when none exists,
// e.g. the first classification) and inserts the replacement inside a single
// transaction. Any failure rolls both statements back, preserving the at-
// most-one-open-row invariant.
func (s *PolicyStore) ReplacePolicy(
	ctx context.Context,
	category string,
	newPriority ingest.Priority,
	reason string,
	now time.Time,
) error {
	if !newPriority.Valid() {
		return fmt.Errorf("invalid priority %q", newPriority)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin policy transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, closePolicySQL, now, category); err != nil {
		return fmt.Errorf("close active policy for %s: %w", category, err)
	}
	if _, err := tx.Exec(ctx, insertPolicySQL, category, string(newPriority), now, reason); err != nil {
		return fmt.Errorf("insert policy for %s: %w", category, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit policy transaction: %w", err)
	}
	return nil
}
