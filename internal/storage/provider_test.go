package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentlens/jobcrawler/internal/storage/memory"
)

func TestObjectPath_DeterministicNaming(t *testing.T) {
	t.Parallel()

	store, err := NewArtifactStore(memory.New(), "raw")
	require.NoError(t, err)

	path := store.ObjectPath("2026-08", "Data Scientist", "Pune, India", 3)
	require.Equal(t, "raw/2026-08/Data_Scientist_Pune_India_p3.json", path)

	// Same inputs, same path.
	require.Equal(t, path, store.ObjectPath("2026-08", "Data Scientist", "Pune, India", 3))
}

func TestObjectPath_NoPrefixNoBatch(t *testing.T) {
	t.Parallel()

	store, err := NewArtifactStore(memory.New(), "")
	require.NoError(t, err)
	require.Equal(t, "ML_Engineer_Delhi_p1.json", store.ObjectPath("", "ML Engineer", "Delhi", 1))
}

func TestSave_WriteOnce(t *testing.T) {
	t.Parallel()

	blobs := memory.New()
	store, err := NewArtifactStore(blobs, "raw")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "2026-08", "QA Engineer", "Mumbai", 1, []byte(`{"jobs_results":[]}`)))

	data, ok := blobs.Object("raw/2026-08/QA_Engineer_Mumbai_p1.json")
	require.True(t, ok)
	require.JSONEq(t, `{"jobs_results":[]}`, string(data))

	// The same page written twice is a bug, and the memory store surfaces it.
	err = store.Save(ctx, "2026-08", "QA Engineer", "Mumbai", 1, []byte(`{}`))
	require.ErrorContains(t, err, "already exists")
}

func TestSave_RejectsZeroPageIndex(t *testing.T) {
	t.Parallel()

	store, err := NewArtifactStore(memory.New(), "raw")
	require.NoError(t, err)
	require.ErrorContains(t, store.Save(context.Background(), "b", "j", "l", 0, nil), "page index")
}

func TestNewArtifactStore_RequiresBlobStore(t *testing.T) {
	t.Parallel()

	_, err := NewArtifactStore(nil, "raw")
	require.ErrorContains(t, err, "blob store is required")
}
