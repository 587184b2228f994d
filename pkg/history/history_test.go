package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/vguard/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, model.RunRecord{Kind: model.RunProtect, StartedAt: base, Success: true, Target: "/apps/1.5.0", Deleted: []string{"/apps/4.0.0"}}))
	require.NoError(t, s.Record(ctx, model.RunRecord{Kind: model.RunSwitch, StartedAt: base.Add(time.Minute), Target: "/apps/4.0.0", Error: "disk busy"}))
	require.NoError(t, s.Record(ctx, model.RunRecord{Kind: model.RunClean, StartedAt: base.Add(2 * time.Minute), Success: true}))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.RunClean, all[0].Kind)
	assert.Equal(t, model.RunSwitch, all[1].Kind)
	assert.Equal(t, "disk busy", all[1].Error)
	assert.Equal(t, model.RunProtect, all[2].Kind)
	assert.Equal(t, []string{"/apps/4.0.0"}, all[2].Deleted)
	for _, r := range all {
		assert.NotEmpty(t, r.ID)
	}

	switches, err := s.List(ctx, Filter{Kind: model.RunSwitch})
	require.NoError(t, err)
	require.Len(t, switches, 1)
	assert.True(t, switches[0].StartedAt.Equal(base.Add(time.Minute)))

	limited, err := s.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRecord_FillsDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, model.RunRecord{Kind: model.RunClean}))
	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].StartedAt.IsZero())
}

func TestRecord_Canceled(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Record(ctx, model.RunRecord{}), context.Canceled)
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, model.RunRecord{Kind: model.RunClean, StartedAt: base.Add(time.Duration(i) * time.Hour), Target: string(rune('a' + i))}))
	}

	n, err := s.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e", list[0].Target)
	assert.Equal(t, "d", list[1].Target)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), model.RunRecord{Kind: model.RunProtect, Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	list, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
