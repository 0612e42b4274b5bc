package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/witchlight/engine/save"
	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func snapshot(t *testing.T, turn int) []byte {
	t.Helper()
	defs := &state.Defs{Game: types.GameDef{Title: "Hollow Hill", Start: "cottage"}}
	s := state.NewState(defs)
	s.TurnCount = turn
	data, err := save.Save(s, defs)
	require.NoError(t, err)
	return data
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	data := snapshot(t, 5)
	require.NoError(t, store.Save(ctx, "quick", data))

	got, err := store.Load(ctx, "quick")
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(got))
}

func TestSaveOverwritesSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	require.NoError(t, store.Save(ctx, "quick", snapshot(t, 1)))
	require.NoError(t, store.Save(ctx, "quick", snapshot(t, 9)))

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 9, slots[0].Turn)
	assert.Equal(t, "Hollow Hill", slots[0].Game)
}

func TestListSortedByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.Save(ctx, name, snapshot(t, 0)))
	}
	slots, err := store.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, s := range slots {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestMissingSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	_, err := store.Load(ctx, "nothing")
	assert.True(t, errors.Is(err, save.ErrNotFound))
	assert.ErrorIs(t, store.Delete(ctx, "nothing"), save.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	require.NoError(t, store.Save(ctx, "quick", snapshot(t, 2)))
	require.NoError(t, store.Delete(ctx, "quick"))
	_, err := store.Load(ctx, "quick")
	assert.ErrorIs(t, err, save.ErrNotFound)
}

func TestRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTempStore(t)

	assert.ErrorIs(t, store.Save(ctx, "../escape", snapshot(t, 0)), save.ErrInvalidSlot)
	assert.ErrorIs(t, store.Save(ctx, "bad", []byte("{")), save.ErrCorrupt)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "quick", snapshot(t, 3)))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 3, slots[0].Turn)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nCREATE x;\n", upSection("-- +migrate Up\nCREATE x;\n-- +migrate Down\nDROP x;"))
	assert.Equal(t, "CREATE y;", upSection("CREATE y;"))
}
