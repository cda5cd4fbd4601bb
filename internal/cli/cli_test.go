package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/ledger"
)

type testEnv struct {
	dir        string
	dest       string
	ledgerPath string
	logFile    string
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		dest:       filepath.Join(dir, "out"),
		ledgerPath: filepath.Join(dir, "ledger.json"),
		logFile:    filepath.Join(dir, "debug.log"),
		configPath: filepath.Join(dir, "config.yaml"),
	}

	verbose, noColor := false, true
	ConfigPath = &env.configPath
	Verbose = &verbose
	NoColor = &noColor
	t.Cleanup(func() {
		ConfigPath = nil
		Verbose = nil
		NoColor = nil
	})
	return env
}

// run executes a fresh command tree and returns its combined output.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runContext(context.Background(), t, args...)
}

func (e *testEnv) runContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "multifetch", SilenceUsage: true, SilenceErrors: true}
	BindFetch(root)
	root.AddCommand(NewLedgerCmd(), NewConfigCmd(), NewVersionCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

// fetchArgs appends the per-test state locations to uris.
func (e *testEnv) fetchArgs(extra ...string) []string {
	return append(extra, "--dest", e.dest, "--ledger", e.ledgerPath, "--log-file", e.logFile)
}

func newFileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_DownloadsAndRecordsLedger(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/a.txt": "alpha"})
	uri := srv.URL + "/a.txt"

	out, err := env.run(t, env.fetchArgs(uri)...)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded=1 failed=0 skipped=0")

	want := filepath.Join(env.dest, "a.txt")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	store, err := ledger.Open(env.ledgerPath)
	require.NoError(t, err)
	got, ok := store.Lookup(uri, env.dest)
	require.True(t, ok)
	assert.Equal(t, want, got)

	logData, err := os.ReadFile(env.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "run_id=")
}

func TestFetch_RerunReusesPath(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/a.txt": "alpha"})
	uri := srv.URL + "/a.txt"

	_, err := env.run(t, env.fetchArgs(uri)...)
	require.NoError(t, err)
	_, err = env.run(t, env.fetchArgs(uri)...)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(env.dest, "a.txt"))
	assert.NoFileExists(t, filepath.Join(env.dest, "a_1.txt"))
}

func TestFetch_UnsupportedSchemeIsSkipped(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, env.fetchArgs("gopher://example.com/file")...)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded=0 failed=0 skipped=1")
	assert.NoDirExists(t, env.dest)
}

func TestFetch_FailOnError(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, nil)
	uri := srv.URL + "/missing.bin"

	_, err := env.run(t, env.fetchArgs(uri, "--retries", "1")...)
	require.NoError(t, err, "failed downloads do not fail the run by default")

	_, err = env.run(t, env.fetchArgs(uri, "--retries", "1", "--fail-on-error")...)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
}

func TestFetch_InvalidFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, env.fetchArgs("http://example.com/a", "--retries", "0")...)
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
	assert.ErrorIs(t, err, errors.ErrRetriesInvalid)

	_, err = env.run(t, env.fetchArgs("http://example.com/a", "--workers", "-1")...)
	assert.ErrorIs(t, err, errors.ErrWorkersNegative)
}

func TestFetch_EnvInvalidUntilFlagOverrides(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("MULTIFETCH_RETRIES", "0")

	_, err := env.run(t, env.fetchArgs("gopher://example.com/file")...)
	assert.ErrorIs(t, err, errors.ErrRetriesInvalid)

	out, err := env.run(t, env.fetchArgs("gopher://example.com/file", "--retries", "3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped=1")
}

func TestFetch_InterruptRemovesPartialFiles(t *testing.T) {
	env := newTestEnv(t)
	chunk := strings.Repeat("x", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for range 500 {
			select {
			case <-r.Context().Done():
				return
			default:
			}
			_, _ = w.Write([]byte(chunk))
			w.(http.Flusher).Flush()
			time.Sleep(20 * time.Millisecond)
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	out, err := env.runContext(ctx, t, env.fetchArgs(srv.URL+"/big.bin", srv.URL+"/other/big.bin")...)
	require.NoError(t, err)
	assert.Contains(t, out, "succeeded=0 failed=2 skipped=0")

	// Checked as soon as the command returns, which is when the process would exit.
	entries, err := os.ReadDir(env.dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "interrupted downloads must not leave files behind")

	store, err := ledger.Open(env.ledgerPath)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestFetch_MetricsFile(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/a.txt": "alpha"})
	metricsPath := filepath.Join(env.dir, "run.prom")

	_, err := env.run(t, env.fetchArgs(srv.URL+"/a.txt", "--metrics-file", metricsPath)...)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `multifetch_downloads_total{protocol="http",status="succeeded"} 1`)
}

func TestFetch_HookScript(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/a.txt": "alpha"})
	marker := filepath.Join(env.dir, "hook.txt")
	script := filepath.Join(env.dir, "notify.tengo")
	require.NoError(t, os.WriteFile(script, []byte(fmt.Sprintf(`
		os := import("os")
		f := os.create(%q)
		f.write_string(localPath)
		f.close()
	`, marker)), 0o600))

	_, err := env.run(t, env.fetchArgs(srv.URL+"/a.txt", "--hook", script)...)
	require.NoError(t, err)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.dest, "a.txt"), string(data))
}

func TestFetch_MissingHookScript(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, env.fetchArgs("http://example.com/a", "--hook", filepath.Join(env.dir, "absent.tengo"))...)
	assert.ErrorIs(t, err, errors.ErrHookLoad)
}

func TestFetch_ConfigFileSettings(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/c.txt": "gamma"})
	require.NoError(t, os.WriteFile(env.configPath, []byte(fmt.Sprintf(
		"settings:\n  dest_dir: %s\n  ledger_path: %s\n  log_file: %s\n",
		env.dest, env.ledgerPath, env.logFile)), 0o600))

	_, err := env.run(t, srv.URL+"/c.txt")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(env.dest, "c.txt"))
}

func TestFetch_NoArgsShowsHelp(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "--retries")
}

func TestLedgerCommands(t *testing.T) {
	env := newTestEnv(t)
	srv := newFileServer(t, map[string]string{"/a.txt": "alpha"})
	uri := srv.URL + "/a.txt"

	out, err := env.run(t, "ledger", "list", "--ledger", env.ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger is empty")

	_, err = env.run(t, env.fetchArgs(uri)...)
	require.NoError(t, err)

	out, err = env.run(t, "ledger", "list", "--ledger", env.ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, out, uri)
	assert.Contains(t, out, filepath.Join(env.dest, "a.txt"))

	_, err = env.run(t, "ledger", "forget", uri, "--ledger", env.ledgerPath, "--dest", env.dest)
	require.NoError(t, err)

	store, err := ledger.Open(env.ledgerPath)
	require.NoError(t, err)
	_, ok := store.Lookup(uri, env.dest)
	assert.False(t, ok)

	_, err = env.run(t, "ledger", "forget", uri, "--ledger", env.ledgerPath, "--dest", env.dest)
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, env.configPath)

	_, err = env.run(t, "config", "init")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)

	_, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)

	_, err = env.run(t, "config", "set", "settings.retries", "6")
	require.NoError(t, err)

	out, err := env.run(t, "config", "get", "settings.retries")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)

	_, err = env.run(t, "config", "set", "settings.retries", "0")
	assert.ErrorIs(t, err, errors.ErrConfigValidation)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "settings.retries")
	assert.Contains(t, out, "http.timeout")
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "multifetch version "+Version)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "multifetch/"+Version, UserAgent())

	old := Version
	t.Cleanup(func() { Version = old })
	Version = "dev build"
	assert.Equal(t, "0.0.0+dev-build", ParsedVersion().String())
}
