package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

func TestActiveJobs_JoinsActivePolicy(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	reg, err := NewRegistry(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT j.job_title, p.priority").
		WillReturnRows(pgxmock.NewRows([]string{"job_title", "priority"}).
			AddRow("Data Scientist", "High").
			AddRow("DevOps Engineer", "Low"))

	jobs, err := reg.ActiveJobs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []ingest.JobTitleEntry{
		{JobTitle: "Data Scientist", Priority: ingest.PriorityHigh},
		{JobTitle: "DevOps Engineer", Priority: ingest.PriorityLow},
	}, jobs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveLocations_ReturnsActiveOnly(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	reg, err := NewRegistry(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT location_name").
		WillReturnRows(pgxmock.NewRows([]string{"location_name"}).
			AddRow("Bengaluru").
			AddRow("Pune"))

	locations, err := reg.ActiveLocations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Bengaluru", "Pune"}, locations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveJobs_QueryErrorPropagates(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	reg, err := NewRegistry(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT j.job_title, p.priority").
		WillReturnError(errors.New("relation jobs_base does not exist"))

	_, err = reg.ActiveJobs(context.Background())
	require.ErrorContains(t, err, "query active jobs")
}

func TestCategoryCounts_GroupsByCategory(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dist, err := NewDistribution(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT category, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"category", "count"}).
			AddRow("Data Science", int64(120)).
			AddRow("Web Dev", int64(3)))

	counts, err := dist.CategoryCounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, []ingest.CategoryCount{
		{Category: "Data Science", Count: 120},
		{Category: "Web Dev", Count: 3},
	}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCounts_EmptyStore(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	dist, err := NewDistribution(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT category, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"category", "count"}))

	counts, err := dist.CategoryCounts(context.Background())
	require.NoError(t, err)
	require.Empty(t, counts)
}
