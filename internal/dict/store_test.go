package dict

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreSnapshotLoadsLazily(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"replacements":{"jason":"JSON"}}`), 0o644))

	store := NewStore(path, nil)
	snap := store.Snapshot()
	require.Equal(t, 1, snap.ReplacementCount())
	require.Equal(t, "JSON", snap.Apply("jason"))
}

func TestStoreSnapshotMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "nope.json"), nil)
	snap := store.Snapshot()
	require.True(t, snap.IsEmpty())
}

func TestStoreReloadsWhenFileChanges(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"replacements":{"a b c":"ABC"}}`), 0o644))

	store := NewStore(path, nil)
	first := store.Snapshot()
	require.Equal(t, "ABC", first.Apply("a b c"))

	require.NoError(t, os.WriteFile(path, []byte(`{"replacements":{"a b c":"AlphaBetaGamma"}}`), 0o644))
	// Force a distinct mtime; some filesystems have coarse resolution.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	second := store.Snapshot()
	require.Equal(t, "AlphaBetaGamma", second.Apply("a b c"))

	// The earlier snapshot is untouched.
	require.Equal(t, "ABC", first.Apply("a b c"))
}

func TestStoreKeepsSnapshotWhenUnchanged(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hotwords":"x"}`), 0o644))

	store := NewStore(path, nil)
	first := store.Snapshot()
	second := store.Snapshot()
	require.Same(t, first, second)
}

func TestStoreReloadReportsParseFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hotwords": 42`), 0o644))

	store := NewStore(path, nil)
	err := store.Reload()
	require.ErrorIs(t, err, ErrParse)
	require.True(t, store.Snapshot().IsEmpty())
}
