package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Data_Scientist", SafeFilename("Data Scientist"))
	require.Equal(t, "Pune_India", SafeFilename("Pune, India"))
	require.Equal(t, "CI_CD_Engineer", SafeFilename("CI/CD Engineer"))
	require.Equal(t, "a_b", SafeFilename(`a\b`))
}

func TestRunMonth(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2026-08", RunMonth(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)))
}

func TestStopReasonTerminal(t *testing.T) {
	t.Parallel()

	require.False(t, RunRunning.Terminal())
	for _, r := range []StopReason{RunCompleted, RunStoppedAPILimit, RunStoppedQuota, RunStoppedRateLimit} {
		require.True(t, r.Terminal())
	}
}

func TestPriorityValid(t *testing.T) {
	t.Parallel()

	require.True(t, PriorityHigh.Valid())
	require.True(t, PriorityMedium.Valid())
	require.True(t, PriorityLow.Valid())
	require.False(t, PriorityNone.Valid())
	require.False(t, Priority("Urgent").Valid())
}

func TestCrawlRunSummary(t *testing.T) {
	t.Parallel()

	started := time.Unix(1700000000, 0).UTC()
	run := &CrawlRun{
		RunID:        "run-1",
		BatchID:      "2026-08",
		APICallsMade: 7,
		JobsFetched:  61,
		StopReason:   RunCompleted,
		StartedAt:    started,
		EndedAt:      started.Add(2 * time.Minute),
	}

	s := run.Summary()
	require.Equal(t, "run-1", s.RunID)
	require.Equal(t, 7, s.APICallsMade)
	require.Equal(t, 61, s.JobsFetched)
	require.Equal(t, 2*time.Minute, s.Duration())
}
