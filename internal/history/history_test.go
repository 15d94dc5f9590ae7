package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradyumna2905/quill/internal/site"
)

func report(buildID string, outcome site.BuildOutcome, written int) *site.BuildReport {
	return &site.BuildReport{
		BuildID:          buildID,
		DocumentsWritten: written,
		Outcome:          outcome,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, report("b1", site.OutcomeSuccess, 4)))
	require.NoError(t, s.Append(ctx, report("b2", site.OutcomeWarning, 3)))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b2", entries[0].BuildID)
	assert.Equal(t, "b1", entries[1].BuildID)
	assert.Equal(t, 3, entries[0].Report.DocumentsWritten)
}

func TestStore_RecentLimit(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, report(id, site.OutcomeSuccess, 1)))
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].BuildID)
}

func TestStore_Latest(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.Append(ctx, report("only", site.OutcomeFailed, 0)))
	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "only", latest.BuildID)
	assert.Equal(t, site.OutcomeFailed, latest.Outcome)
}
