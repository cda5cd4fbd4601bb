package protocol

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyChunks(t *testing.T) {
	src := strings.Repeat("x", 10_000)
	var dst bytes.Buffer

	n, err := copyChunks(&dst, strings.NewReader(src), 4096, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, src, dst.String())
}

func TestCopyChunks_CancelStopsBeforeWrite(t *testing.T) {
	src := strings.Repeat("y", 10)
	var dst bytes.Buffer
	checks := 0
	cancelAfterFirst := func() bool {
		checks++
		return checks > 1
	}

	n, err := copyChunks(&dst, strings.NewReader(src), 4, cancelAfterFirst)
	require.ErrorIs(t, err, ErrCancelled)
	assert.False(t, IsRecoverable(err))
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "yyyy", dst.String())
}

func TestCopyChunks_EmptySourceNeverConsultsCancel(t *testing.T) {
	var dst bytes.Buffer
	n, err := copyChunks(&dst, strings.NewReader(""), 8, func() bool { return true })
	require.NoError(t, err)
	assert.Zero(t, n)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, stderrors.New("connection reset by peer")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, stderrors.New("disk full")
}

func TestCopyChunks_ErrorsAreRecoverable(t *testing.T) {
	_, err := copyChunks(io.Discard, failingReader{}, 8, nil)
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	assert.Contains(t, err.Error(), "read: connection reset by peer")

	_, err = copyChunks(failingWriter{}, strings.NewReader("abc"), 8, nil)
	require.Error(t, err)
	assert.True(t, IsRecoverable(err))
	assert.Contains(t, err.Error(), "write: disk full")
}

func TestIsRecoverable(t *testing.T) {
	assert.False(t, IsRecoverable(nil))
	assert.False(t, IsRecoverable(stderrors.New("plain")))
	assert.False(t, IsRecoverable(ErrCancelled))
	assert.True(t, IsRecoverable(recoverable("login", stderrors.New("530"))))
	assert.Nil(t, recoverable("noop", nil))
}
