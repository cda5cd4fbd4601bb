package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "http://host/a.txt|./out", Key("http://host/a.txt", "./out"))
}

func TestOpen(t *testing.T) {
	t.Run("missing file gives empty store", func(t *testing.T) {
		store, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
		require.NoError(t, err)
		assert.Empty(t, store.Entries())
		assert.True(t, filepath.IsAbs(store.Path()))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Open("")
		assert.ErrorIs(t, err, errors.ErrLedgerPathEmpty)
	})

	t.Run("existing ledger is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultFileName)
		content := `{
    "http://host/a.txt|./out": "./out/a.txt",
    "ftp://host/b.bin|./out": "./out/b_1.bin"
}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		store, err := Open(path)
		require.NoError(t, err)

		localPath, ok := store.Lookup("ftp://host/b.bin", "./out")
		assert.True(t, ok)
		assert.Equal(t, "./out/b_1.bin", localPath)
		assert.Equal(t, []string{"ftp://host/b.bin|./out", "http://host/a.txt|./out"}, store.Keys())
	})

	t.Run("zero-length file is an empty ledger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultFileName)
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		store, err := Open(path)
		require.NoError(t, err)
		assert.Empty(t, store.Entries())
	})

	t.Run("corrupt ledger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Open(path)
		assert.ErrorIs(t, err, errors.ErrLedgerLoad)
	})
}

func TestRecord_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", DefaultFileName)

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record("http://host/a.txt", "./out", "./out/a.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"http://host/a.txt|./out": "./out/a.txt"}`, string(data))

	reloaded, err := Open(path)
	require.NoError(t, err)
	localPath, ok := reloaded.Lookup("http://host/a.txt", "./out")
	assert.True(t, ok)
	assert.Equal(t, "./out/a.txt", localPath)

	_, ok = reloaded.Lookup("http://host/a.txt", "./other")
	assert.False(t, ok, "the destination is part of the key")
}

func TestRecord_ConcurrentWritersKeepEveryEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store, err := Open(path)
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uri := fmt.Sprintf("http://host/%d.txt", i)
			assert.NoError(t, store.Record(uri, "./out", fmt.Sprintf("./out/%d.txt", i)))
		}(i)
	}
	wg.Wait()

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, reloaded.Entries(), writers)
}

func TestForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record("http://host/a.txt", "./out", "./out/a.txt"))

	removed, err := store.Forget("http://host/a.txt", "./out")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Forget("http://host/a.txt", "./out")
	require.NoError(t, err)
	assert.False(t, removed)

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Entries())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	require.NoError(t, store.Record("http://host/a.txt", "./out", "./out/a.txt"))

	entries := store.Entries()
	entries["http://host/a.txt|./out"] = "tampered"

	localPath, _ := store.Lookup("http://host/a.txt", "./out")
	assert.Equal(t, "./out/a.txt", localPath)
}
