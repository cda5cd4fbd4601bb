package download

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/multifetch/pkg/ledger"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://h/a.txt", "a.txt"},
		{"ftp://host/dir/file.bin", "file.bin"},
		{"https://h/archive.tar.gz?x=1#frag", "archive.tar.gz"},
		{"https://h/dir/", "index.html"},
		{"https://h", "index.html"},
		{"sftp://u@h/a%20b.txt", "a b.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.uri))
		})
	}
}

func TestResolve_FreshNames(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "a.txt"), Resolve("http://h/a.txt", dir, nil))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o600))
	assert.Equal(t, filepath.Join(dir, "a_1.txt"), Resolve("http://h/a.txt", dir, nil))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_1.txt"), nil, 0o600))
	assert.Equal(t, filepath.Join(dir, "a_2.txt"), Resolve("http://other/a.txt", dir, nil))
}

func TestResolve_ExtensionRules(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data.tar.gz", ".bashrc", "README"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	assert.Equal(t, filepath.Join(dir, "data.tar_1.gz"), Resolve("http://h/data.tar.gz", dir, nil))
	assert.Equal(t, filepath.Join(dir, ".bashrc_1"), Resolve("http://h/.bashrc", dir, nil))
	assert.Equal(t, filepath.Join(dir, "README_1"), Resolve("http://h/README", dir, nil))
}

func TestResolve_KeepsDestDirVerbatim(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Equal(t, "./out/a.txt", Resolve("http://h/a.txt", "./out", nil))
}

func TestResolve_LedgerHitWins(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)

	recorded := filepath.Join(dir, "gone", "a.txt")
	require.NoError(t, store.Record("http://h/a.txt", dir, recorded))

	// Stored path comes back unchanged even though nothing exists there.
	assert.Equal(t, recorded, Resolve("http://h/a.txt", dir, store))
	// A different destination is a different key.
	other := t.TempDir()
	assert.Equal(t, filepath.Join(other, "a.txt"), Resolve("http://h/a.txt", other, store))
}

func TestResolve_DoesNotCreateFiles(t *testing.T) {
	dir := t.TempDir()
	_ = Resolve("http://h/a.txt", dir, nil)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReserve_ClaimsName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	first := Reserve("http://h/a.txt", dir, nil)
	second := Reserve("http://h/a.txt", dir, nil)

	assert.Equal(t, filepath.Join(dir, "a.txt"), first)
	assert.Equal(t, filepath.Join(dir, "a_1.txt"), second)
	assert.FileExists(t, first)
	assert.FileExists(t, second)
}

func TestReserve_LedgerHitIsNotClaimed(t *testing.T) {
	dir := t.TempDir()
	store, err := ledger.Open(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)
	recorded := filepath.Join(dir, "a.txt")
	require.NoError(t, store.Record("http://h/a.txt", dir, recorded))

	assert.Equal(t, recorded, Reserve("http://h/a.txt", dir, store))
	assert.NoFileExists(t, recorded)
}

func TestReserve_ConcurrentWorkersGetDistinctPaths(t *testing.T) {
	dir := t.TempDir()
	const workers = 40

	paths := make([]string, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			paths[i] = Reserve(fmt.Sprintf("http://host%d/data.bin", i), dir, nil)
		}()
	}
	close(start)
	wg.Wait()

	seen := make(map[string]bool, workers)
	for _, p := range paths {
		assert.False(t, seen[p], "path handed out twice: %s", p)
		seen[p] = true
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, workers)
}
