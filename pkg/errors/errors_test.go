package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name: "nil error stays nil",
			err:  nil,
			msg:  "fetching http://host/a.txt",
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			msg:      "attempt 1 of 3",
			expected: "attempt 1 of 3: connection refused",
		},
		{
			name:     "sentinel error",
			err:      ErrRetriesExhausted,
			msg:      "ftp://host/file.bin",
			expected: "ftp://host/file.bin: retries exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil {
				assert.NoError(t, result)
				return
			}
			require.Error(t, result)
			assert.Equal(t, tt.expected, result.Error())
			assert.ErrorIs(t, result, tt.err)
		})
	}
}

func TestWrapf(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "download %s", "x"))

	err := Wrapf(ErrDirectoryCreate, "dest %s", "./out")
	require.Error(t, err)
	assert.Equal(t, "dest ./out: failed to create destination directory", err.Error())
	assert.ErrorIs(t, err, ErrDirectoryCreate)
}

func TestWrap_ChainKeepsEverySentinel(t *testing.T) {
	cause := errors.New("530 login incorrect")
	err := Wrap(Wrapf(cause, "attempt %d", 3), ErrRetriesExhausted.Error())
	err = errors.Join(ErrRetriesExhausted, err)

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrCancelled)
}
