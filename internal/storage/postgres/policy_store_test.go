package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

func TestActivePolicies_ReturnsOpenRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPolicyStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT internal_category, priority").
		WillReturnRows(pgxmock.NewRows([]string{"internal_category", "priority"}).
			AddRow("Data Science", "High").
			AddRow("DevOps", "Low"))

	active, err := store.ActivePolicies(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]ingest.Priority{
		"Data Science": ingest.PriorityHigh,
		"DevOps":       ingest.PriorityLow,
	}, active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePolicy_ClosesAndInsertsInOneTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPolicyStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ingestion_policy").
		WithArgs(now, "Data Science").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO ingestion_policy").
		WithArgs("Data Science", "Low", now, "Saturated: 22.10% (Threshold: 15.0%)").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err = store.ReplacePolicy(
		context.Background(),
		"Data Science",
		ingest.PriorityLow,
		"Saturated: 22.10% (Threshold: 15.0%)",
		now,
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePolicy_FirstClassificationClosesNothing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPolicyStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectBegin()
	// No open row: the UPDATE touches zero rows and the call still succeeds.
	mock.ExpectExec("UPDATE ingestion_policy").
		WithArgs(now, "Web Dev").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec("INSERT INTO ingestion_policy").
		WithArgs("Web Dev", "High", now, "Starved: Only 0.40% (Threshold: 2.0%)").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err = store.ReplacePolicy(
		context.Background(),
		"Web Dev",
		ingest.PriorityHigh,
		"Starved: Only 0.40% (Threshold: 2.0%)",
		now,
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePolicy_InsertFailureRollsBackClose(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPolicyStore(mock)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()

	// The UPDATE succeeds but the INSERT fails: the transaction must roll
	// back so the previously open row stays open.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ingestion_policy").
		WithArgs(now, "Data Science").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO ingestion_policy").
		WithArgs("Data Science", "Medium", now, "Healthy: 7.00%").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = store.ReplacePolicy(context.Background(), "Data Science", ingest.PriorityMedium, "Healthy: 7.00%", now)
	require.ErrorContains(t, err, "insert policy")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplacePolicy_RejectsInvalidPriority(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPolicyStore(mock)
	require.NoError(t, err)

	err = store.ReplacePolicy(context.Background(), "X", ingest.PriorityNone, "r", time.Now())
	require.ErrorContains(t, err, "invalid priority")
	require.NoError(t, mock.ExpectationsWereMet())
}
